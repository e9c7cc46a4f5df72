package editor

import (
	"slices"

	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// Hit is the result of hit-testing a point.
type Hit struct {
	Component string // instance id, "" over open canvas
	Port      string // port name when a port circle was hit
}

// Canvas reports whether the hit landed on open canvas.
func (h Hit) Canvas() bool { return h.Component == "" }

// HitTest finds what lies under p. Instances painted later win, and port
// circles win over bodies. Effective positions are used, so a component
// being dragged is hit where it is drawn.
func (s *Surface) HitTest(p geometry.Point) Hit {
	ins := s.d.Components()
	for _, in := range slices.Backward(ins) {
		if port, ok := geometry.HitPort(in.Definition, s.mover.Position(in), p); ok {
			return Hit{Component: in.ID, Port: port.Name}
		}
	}
	for _, in := range slices.Backward(ins) {
		if geometry.Bounds(in.Definition, s.mover.Position(in)).Contains(p) {
			return Hit{Component: in.ID}
		}
	}
	return Hit{}
}

// PointerDown handles a press at p. multi is the multi-select modifier.
//
// A press on a port that can source a connection begins a draft. A press on
// a body applies the click-to-select rule and, without multi, begins a drag
// of the instance (or its whole group). A press on open canvas clears the
// selection unless multi is held. Beginning either gesture cancels the
// other.
func (s *Surface) PointerDown(p geometry.Point, multi bool) Hit {
	hit := s.HitTest(p)

	if hit.Port != "" {
		s.mover.Cancel()
		if s.matcher.Begin(s.d, hit.Component, hit.Port) {
			s.logger.Debug("connect started", "component", hit.Component, "port", hit.Port)
			return hit
		}
	}

	s.matcher.Cancel()
	switch {
	case hit.Canvas():
		s.mover.Cancel()
		if !multi {
			s.sel.Clear()
		}
	case multi:
		s.mover.Cancel()
		s.sel.Click(s.d, hit.Component, true)
	default:
		s.sel.Click(s.d, hit.Component, false)
		if s.mover.Start(s.d, hit.Component, p) {
			s.logger.Debug("drag started", "component", hit.Component, "moving", len(s.mover.IDs()))
		}
	}
	return hit
}

// PointerMove updates whichever gesture is in progress.
func (s *Surface) PointerMove(p geometry.Point) {
	switch {
	case s.matcher.Active():
		s.matcher.Track(p)
	case s.mover.Active():
		s.mover.Move(p)
	}
}

// PointerUp finishes the gesture in progress at p. A draft released over an
// eligible port becomes a connection; released anywhere else it is
// discarded. A drag commits its final positions and reroutes attached
// connections.
func (s *Surface) PointerUp(p geometry.Point) (*diagram.Connection, error) {
	switch {
	case s.matcher.Active():
		hit := s.HitTest(p)
		if hit.Port == "" {
			s.matcher.Cancel()
			s.logger.Debug("connect cancelled")
			return nil, nil
		}
		c, ok := s.matcher.Complete(s.d, hit.Component, hit.Port)
		if !ok {
			s.logger.Debug("connect rejected", "component", hit.Component, "port", hit.Port)
			return nil, nil
		}
		s.logger.Info("connected",
			"kind", c.Kind,
			"from", c.From.Component+"."+c.From.Port,
			"to", c.To.Component+"."+c.To.Port)
		return c, nil

	case s.mover.Active():
		ids, err := s.mover.End(p)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			s.logger.Debug("moved", "components", len(ids))
		}
	}
	return nil, nil
}

// CancelGesture abandons any drag or draft without touching the diagram.
func (s *Surface) CancelGesture() {
	s.mover.Cancel()
	s.matcher.Cancel()
}

// Dragging reports whether a drag is in progress.
func (s *Surface) Dragging() bool { return s.mover.Active() }

// Connecting reports whether a connection draft is in progress.
func (s *Surface) Connecting() bool { return s.matcher.Active() }

// Effective returns the displayed position of instance id.
func (s *Surface) Effective(id string) (geometry.Point, bool) {
	in, ok := s.d.Component(id)
	if !ok {
		return geometry.Point{}, false
	}
	return s.mover.Position(in), true
}

// Nudge moves the selection by delta as one committed drag. Grouped
// instances bring their group along.
func (s *Surface) Nudge(delta geometry.Point) error {
	seen := make(map[string]bool)
	for _, id := range s.sel.IDs() {
		if seen[id] {
			continue
		}
		if !s.mover.Start(s.d, id, geometry.Point{}) {
			continue
		}
		for _, m := range s.mover.IDs() {
			seen[m] = true
		}
		if _, err := s.mover.End(delta); err != nil {
			return err
		}
	}
	return nil
}
