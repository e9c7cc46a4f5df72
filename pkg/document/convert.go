package document

import (
	"maps"
	"slices"

	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/diagram"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// FromDiagram converts the committed state of d to a document.
func FromDiagram(d *diagram.Diagram, name string) Document {
	snap := d.Snapshot()
	doc := Document{
		Version:     Version,
		Name:        name,
		Components:  make([]Component, len(snap.Components)),
		Connections: make([]Connection, len(snap.Connections)),
		Groups:      make([]Group, len(snap.Groups)),
	}
	for i, in := range snap.Components {
		doc.Components[i] = Component{
			ID:         in.ID,
			Type:       in.Definition.ID,
			Position:   in.Position,
			Parameters: in.Params,
			GroupID:    in.GroupID,
		}
		if len(in.Params) == 0 {
			doc.Components[i].Parameters = nil
		}
	}
	for i, c := range snap.Connections {
		doc.Connections[i] = Connection{
			ID:     c.ID,
			From:   Endpoint(c.From),
			To:     Endpoint(c.To),
			Kind:   c.Kind.String(),
			Points: c.Points,
		}
	}
	for i, g := range snap.Groups {
		doc.Groups[i] = Group(g)
	}
	return doc
}

// ToDiagram rebuilds a diagram, resolving component types against defs.
// Unknown types, dangling references and connections that break the wiring
// rules are reported as INVALID_DOCUMENT.
func (doc Document) ToDiagram(defs *catalog.Catalog, opts ...diagram.Option) (*diagram.Diagram, error) {
	if doc.Version > Version {
		return nil, pferrors.New(pferrors.ErrCodeInvalidDocument, "document version %d is newer than supported version %d", doc.Version, Version)
	}

	var snap diagram.Snapshot
	for _, c := range doc.Components {
		def, ok := defs.Get(c.Type)
		if !ok {
			return nil, pferrors.New(pferrors.ErrCodeInvalidDocument, "component %q has unknown type %q", c.ID, c.Type)
		}
		snap.Components = append(snap.Components, diagram.Instance{
			ID:         c.ID,
			Definition: def,
			Position:   c.Position,
			Params:     maps.Clone(c.Parameters),
			GroupID:    c.GroupID,
		})
	}
	for _, c := range doc.Connections {
		conn := diagram.Connection{
			ID:     c.ID,
			From:   diagram.Endpoint(c.From),
			To:     diagram.Endpoint(c.To),
			Points: slices.Clone(c.Points),
		}
		if c.Kind != "" {
			k, err := catalog.ParseKind(c.Kind)
			if err != nil {
				return nil, pferrors.Wrap(pferrors.ErrCodeInvalidDocument, err, "connection %q", c.ID)
			}
			conn.Kind = k
		}
		snap.Connections = append(snap.Connections, conn)
	}
	for _, g := range doc.Groups {
		snap.Groups = append(snap.Groups, diagram.Group(g))
	}

	d := diagram.New(opts...)
	if err := d.Restore(snap); err != nil {
		return nil, err
	}
	for _, c := range doc.Connections {
		if c.Kind == "" {
			continue
		}
		if got, _ := d.Connection(c.ID); got != nil && got.Kind.String() != c.Kind {
			return nil, pferrors.New(pferrors.ErrCodeInvalidDocument, "connection %q is %s but joins %s ports", c.ID, c.Kind, got.Kind)
		}
	}
	return d, nil
}

// Validate reports whether doc can be loaded against defs.
func (doc Document) Validate(defs *catalog.Catalog) error {
	_, err := doc.ToDiagram(defs)
	return err
}

// PruneEmptyGroups drops groups no component belongs to and returns how
// many were removed. ToDiagram drops them as well.
func (doc *Document) PruneEmptyGroups() int {
	used := make(map[string]bool, len(doc.Groups))
	for _, c := range doc.Components {
		if c.GroupID != "" {
			used[c.GroupID] = true
		}
	}
	before := len(doc.Groups)
	doc.Groups = slices.DeleteFunc(doc.Groups, func(g Group) bool { return !used[g.ID] })
	return before - len(doc.Groups)
}
