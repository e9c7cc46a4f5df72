// Package gesture interprets in-progress pointer gestures over a diagram.
//
// Two gestures exist, and only one is active at a time:
//
//   - [Matcher] runs a connect gesture: a drag from a sourcing port that
//     either lands on a compatible sinking port and commits a connection, or
//     is released elsewhere and discarded.
//   - [Mover] runs a move gesture: a drag of one instance, or of every member
//     of its group, that commits the new positions on release and then
//     reroutes every attached connection.
//
// Gesture state (the connection draft, snapshotted positions, the current
// delta) lives only in these values and is never written to the diagram
// before the gesture ends. Invalid targets are ignored; the boolean results
// say whether anything happened.
package gesture

import "github.com/matzehuels/pidforge/pkg/catalog"

// CanConnect reports whether a connection from port from to port to is
// admissible.
func CanConnect(from, to catalog.Port) bool { return catalog.CanConnect(from, to) }
