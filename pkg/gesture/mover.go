package gesture

import (
	"github.com/matzehuels/pidforge/pkg/diagram"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
	"github.com/matzehuels/pidforge/pkg/observability"
)

// Mover tracks at most one move gesture.
//
// On Start it snapshots the committed position of the dragged instance, or
// of every member of its group. Move only updates the delta; each moved
// instance's effective position is its snapshot plus that delta. Nothing is
// written to the diagram until End.
//
// The zero value is ready to use.
type Mover struct {
	d       *diagram.Diagram
	subject string
	grab    geometry.Point
	delta   geometry.Point
	ids     []string
	snap    map[string]geometry.Point
}

// Start begins moving instance id, grabbed at cursor. It returns false for
// an unknown id. Any previous move is cancelled.
func (m *Mover) Start(d *diagram.Diagram, id string, cursor geometry.Point) bool {
	m.Cancel()

	in, ok := d.Component(id)
	if !ok {
		return false
	}
	moved := []*diagram.Instance{in}
	if in.GroupID != "" {
		moved = d.Members(in.GroupID)
	}

	m.d = d
	m.subject = id
	m.grab = cursor
	m.delta = geometry.Point{}
	m.snap = make(map[string]geometry.Point, len(moved))
	m.ids = m.ids[:0]
	for _, mi := range moved {
		m.snap[mi.ID] = mi.Position
		m.ids = append(m.ids, mi.ID)
	}
	observability.Editor().OnGestureStart(observability.GestureDrag)
	return true
}

// Move updates the delta from the grab point to cursor.
func (m *Mover) Move(cursor geometry.Point) {
	if m.d != nil {
		m.delta = cursor.Sub(m.grab)
	}
}

// Active reports whether a move is in progress.
func (m *Mover) Active() bool { return m.d != nil }

// Subject returns the id of the instance that was grabbed.
func (m *Mover) Subject() string { return m.subject }

// Delta returns the current displacement.
func (m *Mover) Delta() geometry.Point { return m.delta }

// IDs returns the instances being moved.
func (m *Mover) IDs() []string { return append([]string(nil), m.ids...) }

// Moving reports whether instance id is part of the current move.
func (m *Mover) Moving(id string) bool {
	_, ok := m.snap[id]
	return ok
}

// Effective returns the displayed position of instance id: snapshot plus
// delta while it is being moved, its committed position otherwise.
func (m *Mover) Effective(id string) (geometry.Point, bool) {
	if p, ok := m.snap[id]; ok {
		return p.Add(m.delta), true
	}
	if m.d == nil {
		return geometry.Point{}, false
	}
	in, ok := m.d.Component(id)
	if !ok {
		return geometry.Point{}, false
	}
	return in.Position, true
}

// Position is Effective for an instance already in hand.
func (m *Mover) Position(in *diagram.Instance) geometry.Point {
	if p, ok := m.snap[in.ID]; ok {
		return p.Add(m.delta)
	}
	return in.Position
}

// ConnectionPoints returns the polyline to display for c. Connections
// touching a moved instance are rerouted from effective positions; all
// others return their committed points. c itself is never modified.
func (m *Mover) ConnectionPoints(d *diagram.Diagram, c *diagram.Connection) []geometry.Point {
	if !m.Moving(c.From.Component) && !m.Moving(c.To.Component) {
		return c.Points
	}
	from, ok1 := m.endpoint(d, c.From)
	to, ok2 := m.endpoint(d, c.To)
	if !ok1 || !ok2 {
		return c.Points
	}
	return []geometry.Point{from, to}
}

func (m *Mover) endpoint(d *diagram.Diagram, ep diagram.Endpoint) (geometry.Point, bool) {
	in, ok := d.Component(ep.Component)
	if !ok {
		return geometry.Point{}, false
	}
	return geometry.PortPosition(in.Definition, m.Position(in), ep.Port)
}

// End finishes the move at cursor. It first commits the position of every
// moved instance, then recomputes and commits the polyline of every
// connection attached to one of them. It returns the moved ids, or nil when
// the delta is zero and nothing was committed.
func (m *Mover) End(cursor geometry.Point) ([]string, error) {
	if m.d == nil {
		return nil, nil
	}
	m.Move(cursor)
	d, delta, ids := m.d, m.delta, m.IDs()
	snap := m.snap
	m.reset()

	if delta.IsZero() {
		observability.Editor().OnGestureEnd(observability.GestureDrag, false, 0)
		return nil, nil
	}
	for _, id := range ids {
		if _, ok := d.Component(id); !ok {
			observability.Editor().OnGestureEnd(observability.GestureDrag, false, 0)
			return nil, pferrors.New(pferrors.ErrCodeNotFound, "moved component %q no longer exists", id)
		}
	}

	for _, id := range ids {
		p := snap[id].Add(delta)
		if err := d.UpdateComponent(id, diagram.Patch{Position: &p}); err != nil {
			return nil, err
		}
	}
	for _, c := range d.ConnectionsOf(ids...) {
		if pts, ok := d.Route(c); ok {
			if err := d.UpdateConnection(c.ID, diagram.ConnectionPatch{Points: pts}); err != nil {
				return nil, err
			}
		}
	}
	observability.Editor().OnGestureEnd(observability.GestureDrag, true, len(ids))
	return ids, nil
}

// Cancel abandons the move. Committed positions are untouched.
func (m *Mover) Cancel() {
	if m.d != nil {
		m.reset()
		observability.Editor().OnGestureEnd(observability.GestureDrag, false, 0)
	}
}

func (m *Mover) reset() {
	m.d = nil
	m.subject = ""
	m.grab = geometry.Point{}
	m.delta = geometry.Point{}
	m.ids = nil
	m.snap = nil
}
