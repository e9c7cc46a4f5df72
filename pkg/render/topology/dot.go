package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/render"
)

// Options configures topology rendering.
type Options struct {
	// Detailed adds parameter values to node labels and port names to
	// edge labels. When false, nodes show only the component name.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT source. Nodes are emitted in
// insertion order; grouped instances are wrapped in a cluster per group.
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, g := range d.Groups() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n    style=dashed;\n    color=%q;\n", g.Name, "#7c3aed")
		for _, in := range d.Members(g.ID) {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", in.ID, fmtLabel(in, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}
	for _, in := range d.Components() {
		if in.GroupID == "" {
			fmt.Fprintf(&buf, "  %q [label=%q];\n", in.ID, fmtLabel(in, opts.Detailed))
		}
	}

	buf.WriteString("\n")
	for _, c := range d.Connections() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.From.Component, c.To.Component, strings.Join(fmtEdgeAttrs(c, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(in *diagram.Instance, detailed bool) string {
	label := in.Definition.Label()
	if !detailed {
		return label
	}
	parts := []string{label}
	for _, p := range in.Definition.Parameters {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.FormatValue(in.Value(p.Name))))
	}
	return strings.Join(parts, "\n")
}

func fmtEdgeAttrs(c *diagram.Connection, detailed bool) []string {
	st := render.StyleFor(c.Kind)
	attrs := []string{
		fmt.Sprintf("color=%q", st.Hex()),
		fmt.Sprintf("penwidth=%.0f", st.Width),
	}
	if detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", c.From.Port+" → "+c.To.Port), "fontsize=10")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the SVG scales in browsers.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
