package diagram

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Snapshot is a detached copy of a diagram's committed state. All
// cross-references are by id.
type Snapshot struct {
	Components  []Instance
	Connections []Connection
	Groups      []Group
}

// Snapshot copies the committed state. Mutating the result does not affect d.
func (d *Diagram) Snapshot() Snapshot {
	var s Snapshot
	for _, in := range d.Components() {
		cp := *in
		cp.Params = maps.Clone(in.Params)
		s.Components = append(s.Components, cp)
	}
	for _, c := range d.Connections() {
		cp := *c
		cp.Points = slices.Clone(c.Points)
		s.Connections = append(s.Connections, cp)
	}
	for _, g := range d.Groups() {
		s.Groups = append(s.Groups, *g)
	}
	return s
}

// Restore replaces the diagram's contents with s. Every reference is
// validated first; on error d is unchanged. Groups without members are
// dropped.
func (d *Diagram) Restore(s Snapshot) error {
	next := New(WithIDGenerator(d.newID))

	for _, g := range s.Groups {
		if g.ID == "" {
			return pferrors.New(pferrors.ErrCodeInvalidDocument, "group without id")
		}
		if _, dup := next.groups[g.ID]; dup {
			return pferrors.New(pferrors.ErrCodeInvalidDocument, "duplicate group id %q", g.ID)
		}
		cp := g
		next.groups[g.ID] = &cp
		next.groupOrder = append(next.groupOrder, g.ID)
	}
	for _, in := range s.Components {
		if in.ID == "" || in.Definition == nil {
			return pferrors.New(pferrors.ErrCodeInvalidDocument, "component %q has no id or definition", in.ID)
		}
		if _, dup := next.instances[in.ID]; dup {
			return pferrors.New(pferrors.ErrCodeInvalidDocument, "duplicate component id %q", in.ID)
		}
		if in.GroupID != "" {
			if _, ok := next.groups[in.GroupID]; !ok {
				return pferrors.New(pferrors.ErrCodeInvalidDocument, "component %q references unknown group %q", in.ID, in.GroupID)
			}
		}
		cp := in
		cp.Params = maps.Clone(in.Params)
		if cp.Params == nil {
			cp.Params = map[string]any{}
		}
		next.instances[in.ID] = &cp
		next.order = append(next.order, in.ID)
	}
	for _, c := range s.Connections {
		if _, err := next.AddConnection(c); err != nil {
			return pferrors.Wrap(pferrors.ErrCodeInvalidDocument, err, "connection %q", c.ID)
		}
	}
	next.PruneEmptyGroups()
	for _, g := range next.Groups() {
		next.groupSeq = max(next.groupSeq, groupNumber(g.Name))
	}

	*d = *next
	return nil
}

// groupNumber parses the N of a default "Group N" name, or returns 0.
func groupNumber(name string) int {
	rest, ok := strings.CutPrefix(name, "Group ")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
