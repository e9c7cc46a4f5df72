package diagram

import "slices"

// Selection is an ordered set of selected instance ids.
// The zero value is an empty selection.
type Selection struct {
	ids []string
}

// Select replaces the selection with ids.
func (s *Selection) Select(ids ...string) {
	s.ids = distinct(ids)
}

// Toggle adds id if absent and removes it if present.
func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// Clear empties the selection.
func (s *Selection) Clear() { s.ids = nil }

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string { return slices.Clone(s.ids) }

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool { return slices.Contains(s.ids, id) }

// Single returns the selected id when exactly one instance is selected.
func (s *Selection) Single() (string, bool) {
	if len(s.ids) != 1 {
		return "", false
	}
	return s.ids[0], true
}

// Click applies a pointer click on instance id. With multi held the
// instance's membership is toggled. Otherwise a grouped instance selects its
// whole group and an ungrouped one selects just itself.
func (s *Selection) Click(d *Diagram, id string, multi bool) {
	in, ok := d.Component(id)
	if !ok {
		return
	}
	switch {
	case multi:
		s.Toggle(id)
	case in.GroupID != "":
		s.Select(d.MemberIDs(in.GroupID)...)
	default:
		s.Select(id)
	}
}

// Prune drops ids that no longer exist in d.
func (s *Selection) Prune(d *Diagram) {
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool {
		_, ok := d.Component(id)
		return !ok
	})
}
