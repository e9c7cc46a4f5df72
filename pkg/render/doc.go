// Package render draws diagrams.
//
// # Overview
//
// [Renderer] paints a diagram onto a raster canvas with fogleman/gg, either
// as a live frame of the editing surface or as a tightly cropped PNG export.
// [RenderSVG] writes the same picture as a standalone SVG document, and the
// [topology] subpackage draws the wiring as a Graphviz graph.
//
// Every frame is painted in a fixed order: grid dots, group outlines,
// connections, the connection draft, then components. What is painted comes
// from a [View], which supplies effective positions and live connection
// routes during a drag, the draft, the selection and eligible target ports.
// [Committed] is the view of the diagram at rest.
//
//	r := render.New()
//	if err := r.Mount(1280, 800); err != nil { ... }
//	img, err := r.Frame(d, render.Committed{})
//	png, err := r.Export(d)
//
// # Export
//
// [Renderer.Export] crops to the union of all component bodies, group frames
// and group labels plus [ExportPadding], paints on an opaque white background at [ExportScale]
// pixel density and leaves out the grid. It fails with a PRECONDITION error
// when the diagram is empty and NOT_READY before [Renderer.Mount].
//
// # Styles
//
// Connection and port colors are looked up by kind with [StyleFor]; pipes are
// drawn heaviest.
//
// [topology]: github.com/matzehuels/pidforge/pkg/render/topology
package render
