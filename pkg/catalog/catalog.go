package catalog

import (
	"fmt"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Port is a named attachment point on a component definition.
type Port struct {
	Name      string    `json:"name" toml:"name"`
	Kind      Kind      `json:"type" toml:"kind"`
	Direction Direction `json:"direction" toml:"direction"`
}

// Definition is a catalog entry describing one placeable component type.
// Parameters, Ports and Constraints keep their declaration order.
type Definition struct {
	ID          string      `toml:"id"`
	Name        string      `toml:"name"`
	Category    string      `toml:"category"`
	Icon        string      `toml:"icon"`
	Parameters  []Parameter `toml:"parameter"`
	Ports       []Port      `toml:"port"`
	Constraints []string    `toml:"constraints"`
}

// Port looks up a port by name.
func (d *Definition) Port(name string) (Port, bool) {
	if i := d.PortIndex(name); i >= 0 {
		return d.Ports[i], true
	}
	return Port{}, false
}

// PortIndex returns the declaration index of the named port, or -1.
func (d *Definition) PortIndex(name string) int {
	for i, p := range d.Ports {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Parameter looks up a parameter by name.
func (d *Definition) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Label returns the display name, falling back to the id.
func (d *Definition) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// validate checks identifiers and uniqueness of parameter and port names.
func (d *Definition) validate() error {
	if err := pferrors.ValidateIdentifier(d.ID); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Parameters))
	for _, p := range d.Parameters {
		if err := pferrors.ValidateIdentifier(p.Name); err != nil {
			return fmt.Errorf("%s: parameter: %w", d.ID, err)
		}
		if seen[p.Name] {
			return pferrors.New(pferrors.ErrCodeInvalidCatalog, "%s: duplicate parameter %q", d.ID, p.Name)
		}
		seen[p.Name] = true
	}
	clear(seen)
	for _, p := range d.Ports {
		if err := pferrors.ValidateIdentifier(p.Name); err != nil {
			return fmt.Errorf("%s: port: %w", d.ID, err)
		}
		if seen[p.Name] {
			return pferrors.New(pferrors.ErrCodeInvalidCatalog, "%s: duplicate port %q", d.ID, p.Name)
		}
		if !p.Kind.Valid() || !p.Direction.Valid() {
			return pferrors.New(pferrors.ErrCodeInvalidCatalog, "%s: port %q has invalid kind or direction", d.ID, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Catalog is an ordered, read-only set of definitions keyed by id.
// It is safe for concurrent reads.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// New builds a catalog from defs, preserving their order.
// It rejects invalid identifiers and duplicate ids.
func New(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if d == nil {
			continue
		}
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.defs[d.ID]; dup {
			return nil, pferrors.New(pferrors.ErrCodeInvalidCatalog, "duplicate component id %q", d.ID)
		}
		c.defs[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (*Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// List returns all definitions in catalog order.
func (c *Catalog) List() []*Definition {
	out := make([]*Definition, len(c.order))
	for i, id := range c.order {
		out[i] = c.defs[id]
	}
	return out
}

// IDs returns the definition ids in catalog order.
func (c *Catalog) IDs() []string { return append([]string(nil), c.order...) }

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.order) }
