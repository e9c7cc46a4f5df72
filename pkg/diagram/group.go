package diagram

import (
	"fmt"
	"slices"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// GroupPadding is the margin drawn around a group's members.
const GroupPadding = 15.0

// Group is a named cluster of instances. Membership lives on the instances.
type Group struct {
	ID   string
	Name string
}

// CreateGroup puts every named instance into a new group and returns it.
// At least two distinct ids are required. Instances already in another group
// are moved; the group they leave is not pruned here.
func (d *Diagram) CreateGroup(ids []string) (*Group, error) {
	ids = distinct(ids)
	if len(ids) < 2 {
		return nil, pferrors.New(pferrors.ErrCodePrecondition, "select at least two components to group")
	}
	for _, id := range ids {
		if _, err := d.lookup(id); err != nil {
			return nil, err
		}
	}

	d.groupSeq++
	g := &Group{ID: d.newID(), Name: fmt.Sprintf("Group %d", d.groupSeq)}
	d.groups[g.ID] = g
	d.groupOrder = append(d.groupOrder, g.ID)
	for _, id := range ids {
		d.instances[id].GroupID = g.ID
	}
	return g, nil
}

// Ungroup removes an instance from its group. The group itself stays until
// the next PruneEmptyGroups.
func (d *Diagram) Ungroup(id string) error {
	in, err := d.lookup(id)
	if err != nil {
		return err
	}
	in.GroupID = ""
	return nil
}

// PruneEmptyGroups deletes every group without members and returns their ids.
func (d *Diagram) PruneEmptyGroups() []string {
	used := make(map[string]bool, len(d.groups))
	for _, in := range d.instances {
		if in.GroupID != "" {
			used[in.GroupID] = true
		}
	}
	var pruned []string
	for _, gid := range d.groupOrder {
		if !used[gid] {
			pruned = append(pruned, gid)
			delete(d.groups, gid)
		}
	}
	if len(pruned) > 0 {
		d.groupOrder = slices.DeleteFunc(d.groupOrder, func(s string) bool { return !used[s] })
	}
	return pruned
}

// Group returns the group with the given id.
func (d *Diagram) Group(id string) (*Group, bool) {
	g, ok := d.groups[id]
	return g, ok
}

// Groups returns all groups in creation order.
func (d *Diagram) Groups() []*Group {
	out := make([]*Group, len(d.groupOrder))
	for i, id := range d.groupOrder {
		out[i] = d.groups[id]
	}
	return out
}

// Members returns the instances in a group, in insertion order.
func (d *Diagram) Members(groupID string) []*Instance {
	if groupID == "" {
		return nil
	}
	var out []*Instance
	for _, id := range d.order {
		if in := d.instances[id]; in.GroupID == groupID {
			out = append(out, in)
		}
	}
	return out
}

// MemberIDs returns the ids of the instances in a group.
func (d *Diagram) MemberIDs(groupID string) []string {
	members := d.Members(groupID)
	out := make([]string, len(members))
	for i, in := range members {
		out[i] = in.ID
	}
	return out
}

// GroupBounds returns the padded rectangle around a group's members. The
// position function supplies each member's effective position.
func (d *Diagram) GroupBounds(groupID string, position func(*Instance) geometry.Point) (geometry.Rect, bool) {
	var r geometry.Rect
	members := d.Members(groupID)
	for _, in := range members {
		r = r.Union(geometry.Bounds(in.Definition, position(in)))
	}
	if len(members) == 0 {
		return geometry.Rect{}, false
	}
	return r.Inset(-GroupPadding), true
}

func distinct(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
