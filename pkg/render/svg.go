package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/fonts"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// RenderSVG writes the diagram as a standalone SVG document cropped like an
// export. An empty diagram yields an empty canvas of twice the padding.
func RenderSVG(d *diagram.Diagram, v View) []byte {
	bounds := exportBounds(d, v)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		bounds.Min.X, bounds.Min.Y, bounds.Dx(), bounds.Dy(), bounds.Dx(), bounds.Dy())
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n",
		bounds.Min.X, bounds.Min.Y, bounds.Dx(), bounds.Dy())
	fmt.Fprintf(&buf, `  <g font-family="%s" font-size="%.0f">`+"\n", fonts.FontFamily, labelSize)

	for _, g := range d.Groups() {
		if b, ok := d.GroupBounds(g.ID, v.Position); ok {
			svgGroup(&buf, g, b)
		}
	}
	for _, c := range d.Connections() {
		svgConnection(&buf, c, v.ConnectionPoints(d, c))
	}
	if draft, ok := v.Draft(); ok {
		st := StyleFor(draft.Kind)
		fmt.Fprintf(&buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.0f" stroke-dasharray="8 6" opacity="0.6"/>`+"\n",
			draft.Origin.X, draft.Origin.Y, draft.Cursor.X, draft.Cursor.Y, st.Hex(), st.Width)
	}
	for _, in := range d.Components() {
		svgComponent(&buf, in, v)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func svgGroup(buf *bytes.Buffer, g *diagram.Group, b geometry.Rect) {
	fmt.Fprintf(buf, `    <rect class="group" id="group-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" fill-opacity="0.05" stroke="%s" stroke-width="1.5" stroke-dasharray="6 4"/>`+"\n",
		escape(g.ID), b.Min.X, b.Min.Y, b.Dx(), b.Dy(), hex(groupColor), hex(groupColor))
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n",
		b.Min.X+4, b.Min.Y-groupLabelRise, hex(groupColor), escape(g.Name))
}

func svgConnection(buf *bytes.Buffer, c *diagram.Connection, pts []geometry.Point) {
	if len(pts) < 2 {
		return
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	st := StyleFor(c.Kind)
	fmt.Fprintf(buf, `    <polyline class="connection %s" id="conn-%s" points="%s" fill="none" stroke="%s" stroke-width="%.0f"/>`+"\n",
		c.Kind, escape(c.ID), strings.Join(coords, " "), st.Hex(), st.Width)
}

func svgComponent(buf *bytes.Buffer, in *diagram.Instance, v View) {
	pos := v.Position(in)
	b := geometry.Bounds(in.Definition, pos)
	cx := b.Min.X + b.Dx()/2

	stroke, width := hex(borderColor), 1.5
	if v.Selected(in.ID) {
		stroke, width = hex(selectColor), 3
	}
	fmt.Fprintf(buf, `    <g class="component" id="comp-%s">`+"\n", escape(in.ID))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="#ffffff" stroke="%s" stroke-width="%.1f"/>`+"\n",
		b.Min.X, b.Min.Y, b.Dx(), b.Dy(), stroke, width)
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" font-size="%.0f" font-weight="bold">%s</text>`+"\n",
		cx, b.Min.Y+b.Dy()/2, iconSize, escape(in.Definition.Icon))
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n",
		cx, b.Max.Y-8, escape(in.Definition.Label()))
	if in.GroupID != "" {
		fmt.Fprintf(buf, `      <circle class="group-marker" cx="%.1f" cy="%.1f" r="4" fill="%s"/>`+"\n",
			b.Max.X-8, b.Min.Y+8, hex(groupColor))
	}
	for _, p := range geometry.Ports(in.Definition, pos) {
		ep := diagram.Endpoint{Component: in.ID, Port: p.Name}
		if v.Eligible(ep, p.Port) {
			fmt.Fprintf(buf, `      <circle class="eligible" cx="%.1f" cy="%.1f" r="%.0f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
				p.At.X, p.At.Y, geometry.PortR+3, hex(eligibleColor))
		}
		fmt.Fprintf(buf, `      <circle class="port %s" cx="%.1f" cy="%.1f" r="%.0f" fill="%s" stroke="#ffffff" stroke-width="1.5"><title>%s</title></circle>`+"\n",
			p.Kind, p.At.X, p.At.Y, geometry.PortR, StyleFor(p.Kind).Hex(), escape(p.Name))
	}
	buf.WriteString("    </g>\n")
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
