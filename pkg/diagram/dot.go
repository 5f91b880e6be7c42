package diagram

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// nodeShapes maps component kinds to Graphviz node attributes.
var nodeShapes = map[string]string{
	"actor":       `shape=box, style="rounded,filled", fillcolor=lightyellow`,
	"usecase":     `shape=ellipse, style=filled, fillcolor=white`,
	"requirement": `shape=note, style=filled, fillcolor=white`,
	"block":       `shape=box, style=filled, fillcolor=white`,
	"property":    `shape=box, style="rounded,filled", fillcolor=white`,
	"flowport":    `shape=square, style=filled, fillcolor=lightgrey, fontsize=14`,
}

// edgeStyles maps connection kinds to Graphviz edge attributes.
var edgeStyles = map[string]string{
	"include":     `style=dashed`,
	"extend":      `style=dashed`,
	"association": `arrowhead=none`,
	"derive":      `style=dashed`,
	"refine":      `style=dashed`,
	"copy":        `style=dashed`,
	"comment":     `style=dotted, arrowhead=none`,
	"connector":   `arrowhead=none`,
	"itemflow":    `style=bold`,
}

// stereotyped kinds are labelled «kind» on edges.
var stereotyped = map[string]bool{
	"include": true, "extend": true, "derive": true, "refine": true, "copy": true,
}

// ToDOT converts a diagram to Graphviz DOT. Connections to elements outside
// the diagram still produce an edge; Graphviz draws the missing endpoint
// with default attributes.
func ToDOT(d *Diagram) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", d.Category.String()+":"+d.Name)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=18, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", d.Name)
	buf.WriteString("\n")

	for _, c := range d.Components {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c))}
		if s, ok := nodeShapes[c.Kind]; ok {
			attrs = append(attrs, s)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Connections {
		var attrs []string
		if stereotyped[e.Kind] {
			attrs = append(attrs, fmt.Sprintf("label=%q", "«"+e.Kind+"»"))
		}
		if s, ok := edgeStyles[e.Kind]; ok {
			attrs = append(attrs, s)
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Src, e.Dst)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Src, e.Dst, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(c Component) string {
	label := c.Name
	switch c.Kind {
	case "actor":
		label = "«actor»\n" + label
	case "requirement":
		label = "«requirement»\n" + label
	case "block":
		label = "«block»\n" + label
	}
	for _, k := range slices.Sorted(maps.Keys(c.Attrs)) {
		label += fmt.Sprintf("\n%s: %v", k, c.Attrs[k])
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
