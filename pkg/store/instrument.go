package store

import (
	"context"
	"time"

	"github.com/matzehuels/pidforge/pkg/document"
	"github.com/matzehuels/pidforge/pkg/observability"
)

type instrumented struct {
	Store
	backend string
}

// Instrument reports Save and Load timings to the registered
// observability.StoreHooks under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Save(ctx context.Context, doc *document.Document) error {
	start := time.Now()
	err := s.Store.Save(ctx, doc)
	id := ""
	if doc != nil {
		id = doc.ID
	}
	observability.Store().OnSave(ctx, s.backend, id, time.Since(start), err)
	return err
}

func (s *instrumented) Load(ctx context.Context, id string) (document.Document, error) {
	start := time.Now()
	doc, err := s.Store.Load(ctx, id)
	observability.Store().OnLoad(ctx, s.backend, id, time.Since(start), err)
	return doc, err
}
