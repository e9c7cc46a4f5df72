// Package diagram holds the committed state of a P&ID diagram: placed
// component instances, the connections wiring their ports, and the groups
// clustering them.
//
// # Overview
//
// A [Diagram] is the single source of truth for an editing session. Every
// change goes through one of its mutation methods, which validate their input
// and either apply the change completely or return an error and change
// nothing. Gesture code (drags, wire drafts) keeps its transient state
// elsewhere and commits through these methods when the gesture ends.
//
//	d := diagram.New()
//	tank, _ := d.AddComponent(defs.Get("tank"), 100, 150)
//	pump, _ := d.AddComponent(defs.Get("pump"), 300, 200)
//	g, err := d.CreateGroup([]string{tank.ID, pump.ID})
//
// # Groups
//
// Group membership is stored on each instance ([Instance.GroupID]); a
// [Group] only carries its id and name. Ungrouping an instance or moving it
// to another group can leave a group with no members. Such groups are not
// removed by the mutation itself: call [Diagram.PruneEmptyGroups] once the
// command that changed membership is complete. [Diagram.RemoveComponent]
// prunes on its own.
//
// # Connections
//
// A connection always joins a sourcing port (out or bidirectional) to a
// sinking port (in or bidirectional) of the same kind. Removing a component
// removes every connection attached to it. Identical wires between the same
// pair of ports are allowed.
//
// # Selection
//
// [Selection] is kept apart from the diagram and never persisted. It scopes
// group commands and the property view.
//
// # Concurrency
//
// Diagram and Selection are not safe for concurrent use.
package diagram
