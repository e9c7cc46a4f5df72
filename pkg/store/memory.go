package store

import (
	"context"
	"sync"

	"github.com/matzehuels/pidforge/pkg/document"
)

// MemoryStore keeps encoded documents in a map. Values are stored as JSON so
// callers never share slices or maps with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, doc *document.Document) error {
	if err := prepare(doc); err != nil {
		return err
	}
	data, err := document.Marshal(*doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = data
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (document.Document, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return document.Document{}, notFound(id)
	}
	return document.Unmarshal(data)
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.docs))
	for _, data := range s.docs {
		doc, err := document.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
