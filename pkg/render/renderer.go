package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/diagram"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/fonts"
	"github.com/matzehuels/pidforge/pkg/geometry"
	"github.com/matzehuels/pidforge/pkg/observability"
)

const (
	// GridSpacing is the distance between grid dots on live frames.
	GridSpacing = 20.0

	// ExportPadding is the margin around the components in an export.
	ExportPadding = 20.0

	// ExportScale is the pixel density of an export relative to a frame.
	ExportScale = 2.0

	labelSize = 11.0
	iconSize  = 18.0

	// groupLabelRise is the gap between a group frame and its label baseline.
	groupLabelRise = 4.0
)

// Renderer paints diagrams onto raster canvases.
// It must be mounted before it can paint.
type Renderer struct {
	width, height int
	label, icon   font.Face
	mounted       bool
}

// New returns an unmounted renderer.
func New() *Renderer { return &Renderer{} }

// Mount sizes the display canvas and loads fonts. It may be called again to
// resize.
func (r *Renderer) Mount(width, height int) error {
	if width <= 0 || height <= 0 {
		return pferrors.New(pferrors.ErrCodeInvalidInput, "canvas size %dx%d must be positive", width, height)
	}
	label, err := fonts.Regular(labelSize)
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeInternal, err, "load label font")
	}
	icon, err := fonts.Bold(iconSize)
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeInternal, err, "load icon font")
	}
	r.width, r.height = width, height
	r.label, r.icon = label, icon
	r.mounted = true
	return nil
}

// Mounted reports whether Mount has succeeded.
func (r *Renderer) Mounted() bool { return r.mounted }

// Size returns the display canvas size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Frame paints one display frame: grid, groups, connections, draft and
// components, in that order.
func (r *Renderer) Frame(d *diagram.Diagram, v View) (image.Image, error) {
	if !r.mounted {
		return nil, pferrors.New(pferrors.ErrCodeNotReady, "canvas is not ready yet")
	}
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(canvasColor)
	dc.Clear()
	r.grid(dc)
	r.paint(dc, d, v)
	return dc.Image(), nil
}

// Export rasterizes the committed diagram to PNG, cropped to its
// components and group frames. Nothing is produced on error.
func (r *Renderer) Export(d *diagram.Diagram) (data []byte, err error) {
	start := time.Now()
	defer func() { observability.Editor().OnExport(len(data), time.Since(start), err) }()

	if d.Len() == 0 {
		return nil, pferrors.New(pferrors.ErrCodePrecondition, "add at least one component before exporting")
	}
	if !r.mounted {
		return nil, pferrors.New(pferrors.ErrCodeNotReady, "canvas is not ready yet, try again")
	}

	bounds := exportBounds(d, Committed{})
	w := int(math.Ceil(bounds.Dx() * ExportScale))
	h := int(math.Ceil(bounds.Dy() * ExportScale))

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(ExportScale, ExportScale)
	dc.Translate(-bounds.Min.X, -bounds.Min.Y)
	r.paint(dc, d, Committed{})

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// exportBounds is the crop of an export: every component body and every
// group frame with its label, grown by ExportPadding.
func exportBounds(d *diagram.Diagram, v View) geometry.Rect {
	var b geometry.Rect
	for _, in := range d.Components() {
		b = b.Union(geometry.Bounds(in.Definition, v.Position(in)))
	}
	face, _ := fonts.Regular(labelSize)
	for _, g := range d.Groups() {
		frame, ok := d.GroupBounds(g.ID, v.Position)
		if !ok {
			continue
		}
		b = b.Union(frame).Union(groupLabelRect(face, g.Name, frame))
	}
	return b.Inset(-ExportPadding)
}

// groupLabelRect bounds the label drawn above frame. A nil face falls back
// to an average glyph width.
func groupLabelRect(face font.Face, name string, frame geometry.Rect) geometry.Rect {
	width := float64(len(name)) * labelSize * 0.6
	if face != nil {
		width = float64(font.MeasureString(face, name).Ceil())
	}
	top := frame.Min.Y - groupLabelRise - labelSize
	return geometry.R(frame.Min.X, top, width+4, labelSize+groupLabelRise)
}

// ExportDiagram exports d without a display canvas, mounting a renderer at
// the diagram's extent first.
func ExportDiagram(d *diagram.Diagram) ([]byte, error) {
	ext := d.Extent()
	r := New()
	if err := r.Mount(max(1, int(math.Ceil(ext.Max.X))), max(1, int(math.Ceil(ext.Max.Y)))); err != nil {
		return nil, err
	}
	return r.Export(d)
}

// ExportFilename returns the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("pid-diagram-%s.png", t.Format("2006-01-02T15-04-05"))
}

func (r *Renderer) grid(dc *gg.Context) {
	dc.SetColor(gridColor)
	for x := GridSpacing; x < float64(r.width); x += GridSpacing {
		for y := GridSpacing; y < float64(r.height); y += GridSpacing {
			dc.DrawCircle(x, y, 1)
		}
	}
	dc.Fill()
}

func (r *Renderer) paint(dc *gg.Context, d *diagram.Diagram, v View) {
	for _, g := range d.Groups() {
		if b, ok := d.GroupBounds(g.ID, v.Position); ok {
			r.group(dc, g, b)
		}
	}
	for _, c := range d.Connections() {
		r.connection(dc, c.Kind, v.ConnectionPoints(d, c))
	}
	if draft, ok := v.Draft(); ok {
		st := StyleFor(draft.Kind)
		dc.SetColor(translucent(st.Color))
		dc.SetLineWidth(st.Width)
		dc.SetDash(8, 6)
		dc.DrawLine(draft.Origin.X, draft.Origin.Y, draft.Cursor.X, draft.Cursor.Y)
		dc.Stroke()
		dc.SetDash()
	}
	for _, in := range d.Components() {
		r.component(dc, in, v)
	}
}

func (r *Renderer) group(dc *gg.Context, g *diagram.Group, b geometry.Rect) {
	dc.DrawRoundedRectangle(b.Min.X, b.Min.Y, b.Dx(), b.Dy(), 8)
	dc.SetColor(groupFill)
	dc.FillPreserve()
	dc.SetColor(groupColor)
	dc.SetLineWidth(1.5)
	dc.SetDash(6, 4)
	dc.Stroke()
	dc.SetDash()

	dc.SetFontFace(r.label)
	dc.DrawStringAnchored(g.Name, b.Min.X+4, b.Min.Y-groupLabelRise, 0, 0)
}

func (r *Renderer) connection(dc *gg.Context, kind catalog.Kind, pts []geometry.Point) {
	if len(pts) < 2 {
		return
	}
	st := StyleFor(kind)
	dc.SetColor(st.Color)
	dc.SetLineWidth(st.Width)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

func (r *Renderer) component(dc *gg.Context, in *diagram.Instance, v View) {
	pos := v.Position(in)
	b := geometry.Bounds(in.Definition, pos)
	cx := b.Min.X + b.Dx()/2

	dc.DrawRoundedRectangle(b.Min.X, b.Min.Y, b.Dx(), b.Dy(), 6)
	dc.SetColor(bodyColor)
	dc.FillPreserve()
	if v.Selected(in.ID) {
		dc.SetColor(selectColor)
		dc.SetLineWidth(3)
	} else {
		dc.SetColor(borderColor)
		dc.SetLineWidth(1.5)
	}
	dc.Stroke()

	dc.SetColor(textColor)
	dc.SetFontFace(r.icon)
	dc.DrawStringAnchored(in.Definition.Icon, cx, b.Min.Y+b.Dy()/2-6, 0.5, 0.5)
	dc.SetFontFace(r.label)
	dc.DrawStringAnchored(in.Definition.Label(), cx, b.Max.Y-8, 0.5, 0)

	if in.GroupID != "" {
		dc.SetColor(groupColor)
		dc.DrawCircle(b.Max.X-8, b.Min.Y+8, 4)
		dc.Fill()
	}

	for _, p := range geometry.Ports(in.Definition, pos) {
		ep := diagram.Endpoint{Component: in.ID, Port: p.Name}
		if v.Eligible(ep, p.Port) {
			dc.SetColor(eligibleColor)
			dc.SetLineWidth(2)
			dc.DrawCircle(p.At.X, p.At.Y, geometry.PortR+3)
			dc.Stroke()
		}
		dc.DrawCircle(p.At.X, p.At.Y, geometry.PortR)
		dc.SetColor(StyleFor(p.Kind).Color)
		dc.FillPreserve()
		dc.SetColor(bodyColor)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}
}
