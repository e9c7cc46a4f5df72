package editor

import (
	"context"

	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/document"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/store"
)

// GroupSelection groups the selected instances. Fewer than two selected
// instances is a PRECONDITION error and nothing changes. Groups emptied by
// members moving into the new group are pruned.
func (s *Surface) GroupSelection() (*diagram.Group, error) {
	s.sel.Prune(s.d)
	g, err := s.d.CreateGroup(s.sel.IDs())
	if err != nil {
		return nil, err
	}
	pruned := s.d.PruneEmptyGroups()
	s.logger.Info("grouped", "group", g.Name, "members", s.sel.Len(), "pruned", len(pruned))
	return g, nil
}

// UngroupSelection removes every selected instance from its group, then
// prunes groups left without members.
func (s *Surface) UngroupSelection() error {
	s.sel.Prune(s.d)
	if s.sel.Len() == 0 {
		return pferrors.New(pferrors.ErrCodePrecondition, "select components to ungroup")
	}
	for _, id := range s.sel.IDs() {
		if err := s.d.Ungroup(id); err != nil {
			return err
		}
	}
	pruned := s.d.PruneEmptyGroups()
	s.logger.Info("ungrouped", "components", s.sel.Len(), "pruned", len(pruned))
	return nil
}

// DeleteSelection removes the selected instances and their connections.
func (s *Surface) DeleteSelection() error {
	s.sel.Prune(s.d)
	if s.sel.Len() == 0 {
		return pferrors.New(pferrors.ErrCodePrecondition, "select components to delete")
	}
	s.CancelGesture()
	ids := s.sel.IDs()
	for _, id := range ids {
		if err := s.d.RemoveComponent(id); err != nil {
			return err
		}
	}
	s.sel.Clear()
	s.logger.Info("deleted", "components", len(ids))
	return nil
}

// Clear removes everything from the diagram. It refuses with a
// PRECONDITION error unless the user confirmed.
func (s *Surface) Clear(confirmed bool) error {
	if !confirmed {
		return pferrors.New(pferrors.ErrCodePrecondition, "clearing the diagram needs confirmation")
	}
	s.CancelGesture()
	s.d.RemoveAll()
	s.sel.Clear()
	s.docID = ""
	s.logger.Info("cleared diagram")
	return nil
}

// Document returns the committed diagram as a document. It carries the id
// of the stored schematic it was loaded from or last saved as.
func (s *Surface) Document() document.Document {
	doc := document.FromDiagram(s.d, s.name)
	doc.ID = s.docID
	return doc
}

// LoadDocument replaces the diagram with doc. A document that fails
// validation leaves the current diagram untouched.
func (s *Surface) LoadDocument(doc document.Document) error {
	next, err := doc.ToDiagram(s.defs)
	if err != nil {
		return err
	}
	if err := s.d.Restore(next.Snapshot()); err != nil {
		return err
	}
	s.CancelGesture()
	s.sel.Clear()
	s.name = doc.Name
	s.docID = doc.ID
	s.logger.Info("loaded schematic", "name", doc.Name,
		"components", len(doc.Components), "connections", len(doc.Connections))
	return nil
}

// Save writes the diagram to st and returns the stored id.
func (s *Surface) Save(ctx context.Context, st store.Store) (string, error) {
	doc := s.Document()
	if err := st.Save(ctx, &doc); err != nil {
		return "", err
	}
	s.docID = doc.ID
	s.logger.Info("saved schematic", "id", doc.ID, "name", doc.Name)
	return doc.ID, nil
}

// Open loads the schematic stored under id.
func (s *Surface) Open(ctx context.Context, st store.Store, id string) error {
	doc, err := st.Load(ctx, id)
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}
