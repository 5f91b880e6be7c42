package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/sysmlexport/pkg/cache"
	"github.com/matzehuels/sysmlexport/pkg/diagram"
	"github.com/matzehuels/sysmlexport/pkg/exporter"
)

// DiagramsFile is the artifact name of the JSON export.
const DiagramsFile = "diagrams.json"

// Render produces the artifacts of res for every format. JSON yields one
// file with all diagrams; DOT and SVG yield one file per diagram.
func Render(ctx context.Context, res *exporter.Result, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)
	all := res.All()

	for _, format := range formats {
		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			if err := diagram.WriteJSON(all, &buf); err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[DiagramsFile] = buf.Bytes()
		case FormatDOT:
			for _, d := range all {
				if err := addArtifact(artifacts, d, FormatDOT, []byte(diagram.ToDOT(d))); err != nil {
					return nil, err
				}
			}
		case FormatSVG:
			for _, d := range all {
				svg, err := diagram.RenderSVG(ctx, diagram.ToDOT(d))
				if err != nil {
					return nil, fmt.Errorf("render svg %s: %w", d.ID, err)
				}
				if err := addArtifact(artifacts, d, FormatSVG, svg); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
	}
	return artifacts, nil
}

// ArtifactName returns "<category>_<container>.<ext>" with the container
// path flattened, e.g. "usecase_1_4.dot" for container /1/4. Paths that do
// not flatten losslessly get a short hash of the container ID appended, so
// distinct containers never share a name.
func ArtifactName(d *diagram.Diagram, ext string) string {
	slug, ok := strings.CutPrefix(d.ID, "/")
	exact := ok && slug != ""
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r != '/':
			exact = false
		}
		return '_'
	}, slug)
	if slug == "" {
		slug = "root"
	}
	if !exact {
		slug += "." + cache.Hash([]byte(d.ID))[:8]
	}
	return fmt.Sprintf("%s_%s.%s", d.Category, slug, ext)
}

func addArtifact(artifacts map[string][]byte, d *diagram.Diagram, ext string, data []byte) error {
	name := ArtifactName(d, ext)
	if _, dup := artifacts[name]; dup {
		return fmt.Errorf("artifact %s for %s already rendered", name, d.ID)
	}
	artifacts[name] = data
	return nil
}
