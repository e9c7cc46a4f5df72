package render

import (
	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/geometry"
	"github.com/matzehuels/pidforge/pkg/gesture"
)

// View supplies the transient state painted on top of a diagram.
type View interface {
	// Position returns the effective position of an instance.
	Position(in *diagram.Instance) geometry.Point

	// ConnectionPoints returns the polyline to draw for c.
	ConnectionPoints(d *diagram.Diagram, c *diagram.Connection) []geometry.Point

	// Draft returns the connection draft, if one is in progress.
	Draft() (gesture.Draft, bool)

	// Selected reports whether an instance is outlined as selected.
	Selected(id string) bool

	// Eligible reports whether a port is highlighted as a draft target.
	Eligible(ep diagram.Endpoint, p catalog.Port) bool
}

// Committed is the View of a diagram at rest: committed positions and
// polylines, no draft, no selection.
type Committed struct{}

func (Committed) Position(in *diagram.Instance) geometry.Point { return in.Position }

func (Committed) ConnectionPoints(_ *diagram.Diagram, c *diagram.Connection) []geometry.Point {
	return c.Points
}

func (Committed) Draft() (gesture.Draft, bool)                 { return gesture.Draft{}, false }
func (Committed) Selected(string) bool                         { return false }
func (Committed) Eligible(diagram.Endpoint, catalog.Port) bool { return false }
