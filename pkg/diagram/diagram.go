package diagram

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/pidforge/pkg/catalog"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// Instance is a component placed on the diagram.
type Instance struct {
	ID         string
	Definition *catalog.Definition // shared with the catalog, never modified
	Position   geometry.Point      // top-left corner of the body
	Params     map[string]any      // overrides of definition defaults
	GroupID    string              // "" when ungrouped
}

// Value returns the instance's value for a parameter: the override if one is
// set, otherwise the definition default.
func (in *Instance) Value(name string) any {
	if v, ok := in.Params[name]; ok {
		return v
	}
	if p, ok := in.Definition.Parameter(name); ok {
		return p.Default
	}
	return nil
}

// Bounds returns the instance's body rectangle at its committed position.
func (in *Instance) Bounds() geometry.Rect {
	return geometry.Bounds(in.Definition, in.Position)
}

// Patch is a partial update for an instance. Nil fields are left untouched,
// so the zero Patch changes nothing.
type Patch struct {
	Position *geometry.Point
	Params   map[string]any // merged key by key into the overrides
	GroupID  *string        // "" clears membership
}

// Option configures a Diagram.
type Option func(*Diagram)

// WithIDGenerator replaces the uuid generator used for new instances,
// connections and groups.
func WithIDGenerator(gen func() string) Option {
	return func(d *Diagram) { d.newID = gen }
}

// Diagram is the committed set of instances, connections and groups.
// Iteration order of every collection is insertion order.
//
// The zero value is not usable; use New.
type Diagram struct {
	instances map[string]*Instance
	order     []string

	conns     map[string]*Connection
	connOrder []string

	groups     map[string]*Group
	groupOrder []string
	groupSeq   int

	newID func() string
}

// New creates an empty diagram.
func New(opts ...Option) *Diagram {
	d := &Diagram{
		instances: make(map[string]*Instance),
		conns:     make(map[string]*Connection),
		groups:    make(map[string]*Group),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddComponent places a new instance of def at (x, y) with no parameter
// overrides and no group. It fails only when def is nil.
func (d *Diagram) AddComponent(def *catalog.Definition, x, y float64) (*Instance, error) {
	if def == nil {
		return nil, pferrors.New(pferrors.ErrCodeInvalidInput, "component definition is required")
	}
	in := &Instance{
		ID:         d.newID(),
		Definition: def,
		Position:   geometry.Pt(x, y),
		Params:     map[string]any{},
	}
	d.instances[in.ID] = in
	d.order = append(d.order, in.ID)
	return in, nil
}

// Component returns the instance with the given id.
func (d *Diagram) Component(id string) (*Instance, bool) {
	in, ok := d.instances[id]
	return in, ok
}

// Components returns all instances in insertion order.
func (d *Diagram) Components() []*Instance {
	out := make([]*Instance, len(d.order))
	for i, id := range d.order {
		out[i] = d.instances[id]
	}
	return out
}

// Len returns the number of instances.
func (d *Diagram) Len() int { return len(d.order) }

// UpdateComponent merges p into the instance. A GroupID must name an
// existing group or be empty. Nothing changes if any field is rejected.
func (d *Diagram) UpdateComponent(id string, p Patch) error {
	in, err := d.lookup(id)
	if err != nil {
		return err
	}
	if p.GroupID != nil && *p.GroupID != "" {
		if _, ok := d.groups[*p.GroupID]; !ok {
			return pferrors.New(pferrors.ErrCodeNotFound, "group %q not found", *p.GroupID)
		}
	}
	if p.Position != nil {
		in.Position = *p.Position
	}
	if len(p.Params) > 0 {
		if in.Params == nil {
			in.Params = make(map[string]any, len(p.Params))
		}
		maps.Copy(in.Params, p.Params)
	}
	if p.GroupID != nil {
		in.GroupID = *p.GroupID
	}
	return nil
}

// SetParameter writes one parameter override. The value is stored as given;
// validating it against the definition is the caller's job.
func (d *Diagram) SetParameter(id, name string, value any) error {
	return d.UpdateComponent(id, Patch{Params: map[string]any{name: value}})
}

// RemoveComponent deletes an instance together with every connection
// attached to it, then prunes groups left empty.
func (d *Diagram) RemoveComponent(id string) error {
	if _, err := d.lookup(id); err != nil {
		return err
	}
	for _, c := range d.ConnectionsOf(id) {
		d.dropConnection(c.ID)
	}
	delete(d.instances, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
	d.PruneEmptyGroups()
	return nil
}

// RemoveAll clears instances, connections and groups.
func (d *Diagram) RemoveAll() {
	clear(d.instances)
	clear(d.conns)
	clear(d.groups)
	d.order = nil
	d.connOrder = nil
	d.groupOrder = nil
}

// Extent returns the union of all instance bodies at their committed
// positions, or an empty Rect when the diagram is empty.
func (d *Diagram) Extent() geometry.Rect {
	var r geometry.Rect
	for _, in := range d.Components() {
		r = r.Union(in.Bounds())
	}
	return r
}

func (d *Diagram) lookup(id string) (*Instance, error) {
	in, ok := d.instances[id]
	if !ok {
		return nil, pferrors.New(pferrors.ErrCodeNotFound, "component %q not found", id)
	}
	return in, nil
}
