package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/pipeline"
)

// defaultOutDir is where artifacts go when neither --out nor export.out is set.
const defaultOutDir = "diagrams"

// exportFlags holds the export command's flag values.
type exportFlags struct {
	root        string
	formats     string
	out         string
	concurrency int
	noCache     bool
	refresh     bool
}

// exportSettings are the effective export settings after merging config
// and flags.
type exportSettings struct {
	root        string
	formats     []string
	out         string
	concurrency int
}

// merge overlays flags that were set on the command line on top of cfg.
func (f exportFlags) merge(cfg ExportConfig, changed func(name string) bool) exportSettings {
	s := exportSettings{
		root:        cfg.Root,
		formats:     cfg.Formats,
		out:         cfg.Out,
		concurrency: cfg.Concurrency,
	}
	if changed("root") {
		s.root = f.root
	}
	if changed("format") {
		s.formats = parseFormats(f.formats)
	}
	if changed("out") || s.out == "" {
		s.out = f.out
	}
	if changed("concurrency") {
		s.concurrency = f.concurrency
	}
	return s
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <model.json>",
		Short: "Export diagrams from a model file",
		Long: `Walk the model tree from the root (or --root), collect use case,
requirement and internal block diagrams, and write them to --out.

Formats: json (one diagrams.json), dot and svg (one file per diagram).`,
		Example: `  sysmlexport export vehicle.json
  sysmlexport export vehicle.json --root /1 -f json,svg -o out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := flags.merge(c.Config.Export, cmd.Flags().Changed)
			return c.runExport(cmd, args[0], s, flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "start node ID (default: model root)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output formats: json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", defaultOutDir, "output directory")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", pipeline.DefaultConcurrency, "maximum concurrent child loads")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached artifacts")
	completeRootFlag(cmd)

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, modelPath string, s exportSettings, flags exportFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Exporting diagrams...")
	restore := trackExport(spinner)
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Options{
		ModelPath:   modelPath,
		Root:        s.root,
		Formats:     s.formats,
		MetaTypes:   c.Config.Meta.Types,
		Refresh:     flags.refresh,
		Concurrency: s.concurrency,
		Logger:      logger,
	})
	spinner.Stop()
	restore()

	if err != nil {
		if res != nil && res.Export != nil {
			printExportStats(res)
		}
		return reportFailure(err)
	}

	paths, err := writeArtifacts(s.out, res.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Exported %s", modelPath)
	printExportStats(res)
	for _, p := range paths {
		printFile(p)
	}
	prog.done("Export finished")
	return nil
}

// reportFailure prints every branch error of a failed run and returns a
// one-line summary.
func reportFailure(err error) error {
	var merr *multierror.Error
	if !stderrors.As(err, &merr) {
		return err
	}
	for _, e := range merr.Errors {
		printError("%s", errors.UserMessage(e))
	}
	return fmt.Errorf("export incomplete: %d branch error(s)", len(merr.Errors))
}

// writeArtifacts writes each artifact into dir and returns the written paths
// in name order.
func writeArtifacts(dir string, artifacts map[string][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	res := pipeline.Result{Artifacts: artifacts}
	var paths []string
	for _, name := range res.ArtifactNames() {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, artifacts[name], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
