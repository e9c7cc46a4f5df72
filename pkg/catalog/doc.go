// Package catalog defines the component definitions a P&ID diagram is built
// from and the sources they are loaded from.
//
// A [Definition] describes one placeable component type: its display data,
// its parameters (with defaults, units, required flags and enumerated
// options), its ports and a list of constraint expressions. Definitions are
// immutable once loaded. Every placed instance holds a pointer to its
// definition rather than a copy.
//
// # Ports
//
// Each [Port] has a [Kind] (pipe, signal, electrical) and a [Direction]
// (in, out, bidirectional). Port declaration order is significant: the
// geometry package lays ports out along the component body by their index,
// so both the TOML and JSON decoders preserve document order.
//
// # Sources
//
// The catalog collaborator is modelled by [Source]:
//
//	src := catalog.DefaultSource()                  // embedded catalog
//	src := catalog.FileSource("plant.toml")         // TOML or JSON file
//	src := catalog.NewHTTPSource(url, c, nil)       // Flask-compatible API
//
//	cat, err := src.ListDefinitions(ctx)
//
// The embedded default catalog ships tank, control_valve, pump,
// level_controller and pipe definitions.
//
// Constraint strings are opaque: they are displayed, never evaluated.
package catalog
