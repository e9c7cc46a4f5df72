package diagram

import (
	"slices"

	"github.com/matzehuels/pidforge/pkg/catalog"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// Endpoint names one port of one instance.
type Endpoint struct {
	Component string
	Port      string
}

// Connection is a wire from a sourcing port to a sinking port.
// Points caches the polyline in diagram space; it is refreshed when either
// endpoint's instance is moved.
type Connection struct {
	ID     string
	From   Endpoint
	To     Endpoint
	Points []geometry.Point
	Kind   catalog.Kind
}

// Touches reports whether either end of c is on instance id.
func (c *Connection) Touches(id string) bool {
	return c.From.Component == id || c.To.Component == id
}

// ConnectionPatch is a partial update for a connection.
// A nil Points leaves the cached polyline untouched.
type ConnectionPatch struct {
	Points []geometry.Point
}

// Resolve returns the instance and port an endpoint refers to.
func (d *Diagram) Resolve(ep Endpoint) (*Instance, catalog.Port, bool) {
	in, ok := d.instances[ep.Component]
	if !ok {
		return nil, catalog.Port{}, false
	}
	p, ok := in.Definition.Port(ep.Port)
	if !ok {
		return nil, catalog.Port{}, false
	}
	return in, p, true
}

// PortPosition resolves an endpoint at its instance's committed position.
func (d *Diagram) PortPosition(ep Endpoint) (geometry.Point, bool) {
	in, ok := d.instances[ep.Component]
	if !ok {
		return geometry.Point{}, false
	}
	return geometry.PortPosition(in.Definition, in.Position, ep.Port)
}

// Route computes the polyline of c from committed positions.
func (d *Diagram) Route(c *Connection) ([]geometry.Point, bool) {
	from, ok := d.PortPosition(c.From)
	if !ok {
		return nil, false
	}
	to, ok := d.PortPosition(c.To)
	if !ok {
		return nil, false
	}
	return []geometry.Point{from, to}, true
}

// AddConnection validates c and appends it. An empty ID is filled in, a nil
// Points is routed from committed positions and Kind is taken from the
// ports. Identical existing wires are not checked for.
func (d *Diagram) AddConnection(c Connection) (*Connection, error) {
	_, from, ok := d.Resolve(c.From)
	if !ok {
		return nil, pferrors.New(pferrors.ErrCodeNotFound, "endpoint %s.%s not found", c.From.Component, c.From.Port)
	}
	_, to, ok := d.Resolve(c.To)
	if !ok {
		return nil, pferrors.New(pferrors.ErrCodeNotFound, "endpoint %s.%s not found", c.To.Component, c.To.Port)
	}
	if c.From == c.To {
		return nil, pferrors.New(pferrors.ErrCodeInvalidInput, "port %s cannot be wired to itself", c.From.Port)
	}
	if !catalog.CanConnect(from, to) {
		return nil, pferrors.New(pferrors.ErrCodeInvalidInput,
			"cannot connect %s (%s, %s) to %s (%s, %s)",
			from.Name, from.Kind, from.Direction, to.Name, to.Kind, to.Direction)
	}

	if c.ID == "" {
		c.ID = d.newID()
	}
	if _, dup := d.conns[c.ID]; dup {
		return nil, pferrors.New(pferrors.ErrCodeInvalidInput, "connection %q already exists", c.ID)
	}
	c.Kind = from.Kind
	if c.Points == nil {
		c.Points, _ = d.Route(&c)
	} else {
		c.Points = slices.Clone(c.Points)
	}

	stored := &c
	d.conns[c.ID] = stored
	d.connOrder = append(d.connOrder, c.ID)
	return stored, nil
}

// UpdateConnection merges p into the connection.
func (d *Diagram) UpdateConnection(id string, p ConnectionPatch) error {
	c, ok := d.conns[id]
	if !ok {
		return pferrors.New(pferrors.ErrCodeNotFound, "connection %q not found", id)
	}
	if p.Points != nil {
		c.Points = slices.Clone(p.Points)
	}
	return nil
}

// RemoveConnection deletes a connection.
func (d *Diagram) RemoveConnection(id string) error {
	if _, ok := d.conns[id]; !ok {
		return pferrors.New(pferrors.ErrCodeNotFound, "connection %q not found", id)
	}
	d.dropConnection(id)
	return nil
}

// Connection returns the connection with the given id.
func (d *Diagram) Connection(id string) (*Connection, bool) {
	c, ok := d.conns[id]
	return c, ok
}

// Connections returns all connections in insertion order.
func (d *Diagram) Connections() []*Connection {
	out := make([]*Connection, len(d.connOrder))
	for i, id := range d.connOrder {
		out[i] = d.conns[id]
	}
	return out
}

// ConnectionsOf returns the connections with at least one end on any of the
// given instances, in insertion order.
func (d *Diagram) ConnectionsOf(ids ...string) []*Connection {
	var out []*Connection
	for _, cid := range d.connOrder {
		c := d.conns[cid]
		if slices.ContainsFunc(ids, c.Touches) {
			out = append(out, c)
		}
	}
	return out
}

func (d *Diagram) dropConnection(id string) {
	delete(d.conns, id)
	d.connOrder = slices.DeleteFunc(d.connOrder, func(s string) bool { return s == id })
}
