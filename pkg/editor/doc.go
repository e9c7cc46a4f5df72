// Package editor is the input surface of a P&ID diagram.
//
// A [Surface] owns one [diagram.Diagram] together with the transient state
// around it: the selection, at most one gesture (a [gesture.Mover] drag or a
// [gesture.Matcher] connection draft) and the [render.Renderer] that paints
// it. Pointer events are hit-tested against effective positions, ports
// before bodies, and routed to the gesture they start:
//
//	s := editor.New(catalog.Default())
//	tank, _ := s.Drop("tank", geometry.Pt(100, 150))
//	pump, _ := s.Drop("pump", geometry.Pt(300, 200))
//
//	s.PointerDown(geometry.Pt(200, 190), false) // tank outlet: begins a draft
//	s.PointerMove(geometry.Pt(260, 210))
//	s.PointerUp(geometry.Pt(300, 220))          // pump suction: commits a pipe
//
// Commands that violate a precondition (grouping fewer than two components,
// exporting an empty diagram) return a PRECONDITION error whose
// errors.UserMessage is meant to be shown as a notice. Nothing is mutated
// in that case.
//
// A Surface is not safe for concurrent use.
package editor
