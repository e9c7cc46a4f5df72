package gesture

import (
	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/geometry"
	"github.com/matzehuels/pidforge/pkg/observability"
)

// Draft is an unfinished connection following the cursor.
type Draft struct {
	From   diagram.Endpoint
	Kind   catalog.Kind
	Origin geometry.Point // resolved position of the source port
	Cursor geometry.Point
}

// Matcher tracks at most one connection draft.
// The zero value is ready to use.
type Matcher struct {
	draft *Draft
}

// Begin starts a draft at port of instance id. Only out and bidirectional
// ports can start a draft; anything else leaves the matcher idle and returns
// false. Any previous draft is discarded.
func (m *Matcher) Begin(d *diagram.Diagram, id, port string) bool {
	m.Cancel()

	ep := diagram.Endpoint{Component: id, Port: port}
	_, p, ok := d.Resolve(ep)
	if !ok || !p.Direction.CanSource() {
		return false
	}
	origin, _ := d.PortPosition(ep)
	m.draft = &Draft{From: ep, Kind: p.Kind, Origin: origin, Cursor: origin}
	observability.Editor().OnGestureStart(observability.GestureConnect)
	return true
}

// Track moves the draft's free end to cursor.
func (m *Matcher) Track(cursor geometry.Point) {
	if m.draft != nil {
		m.draft.Cursor = cursor
	}
}

// Complete tries to finish the draft at port of instance id. On success the
// connection is committed to d with the two port positions as its polyline.
// The draft is discarded whether or not a connection was made.
func (m *Matcher) Complete(d *diagram.Diagram, id, port string) (*diagram.Connection, bool) {
	draft := m.draft
	m.draft = nil
	if draft == nil {
		return nil, false
	}

	c, ok := m.commit(d, draft, diagram.Endpoint{Component: id, Port: port})
	observability.Editor().OnGestureEnd(observability.GestureConnect, ok, boolToInt(ok))
	return c, ok
}

func (m *Matcher) commit(d *diagram.Diagram, draft *Draft, to diagram.Endpoint) (*diagram.Connection, bool) {
	if to == draft.From {
		return nil, false
	}
	_, from, ok := d.Resolve(draft.From)
	if !ok {
		return nil, false
	}
	_, target, ok := d.Resolve(to)
	if !ok || !CanConnect(from, target) {
		return nil, false
	}
	start, _ := d.PortPosition(draft.From)
	end, _ := d.PortPosition(to)
	c, err := d.AddConnection(diagram.Connection{
		From:   draft.From,
		To:     to,
		Points: []geometry.Point{start, end},
	})
	if err != nil {
		return nil, false
	}
	return c, true
}

// Cancel discards the draft without touching the diagram.
func (m *Matcher) Cancel() {
	if m.draft != nil {
		m.draft = nil
		observability.Editor().OnGestureEnd(observability.GestureConnect, false, 0)
	}
}

// Active reports whether a draft is in progress.
func (m *Matcher) Active() bool { return m.draft != nil }

// Draft returns a copy of the current draft.
func (m *Matcher) Draft() (Draft, bool) {
	if m.draft == nil {
		return Draft{}, false
	}
	return *m.draft, true
}

// Eligible reports whether port p at ep would accept the current draft.
// It only drives highlighting; Complete re-checks everything.
func (m *Matcher) Eligible(ep diagram.Endpoint, p catalog.Port) bool {
	if m.draft == nil || ep == m.draft.From {
		return false
	}
	return p.Direction.CanSink() && p.Kind == m.draft.Kind
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
