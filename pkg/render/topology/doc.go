// Package topology draws the wiring of a diagram as a Graphviz graph.
//
// # Overview
//
// Where [render.Renderer] reproduces the engineer's layout, this package
// ignores positions and lets Graphviz arrange the components by how they
// are wired. It is useful for reviewing large schematics: every instance
// becomes a node, every connection an edge colored by kind, and every group
// a cluster.
//
// # Usage
//
//	dot := topology.ToDOT(d, topology.Options{})
//	svg, err := topology.RenderSVG(dot)
//
// With [Options.Detailed] set, node labels also list parameter values and
// edge labels name the ports they join.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// generation (WebAssembly build of Graphviz, no system install required).
//
// [render.Renderer]: github.com/matzehuels/pidforge/pkg/render.Renderer
package topology
