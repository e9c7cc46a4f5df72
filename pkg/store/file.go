package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/pidforge/pkg/document"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// FileStore is a file-based store for CLI use.
// Documents are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, defaults to ~/.config/pidforge/schematics/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "pidforge", "schematics")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create schematic dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(_ context.Context, doc *document.Document) error {
	if err := prepare(doc); err != nil {
		return err
	}
	data, err := document.Marshal(*doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write through a temp file so a crash never leaves a truncated document.
	tmp := s.path(doc.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "write schematic file")
	}
	if err := os.Rename(tmp, s.path(doc.ID)); err != nil {
		os.Remove(tmp)
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "write schematic file")
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, id string) (document.Document, error) {
	if err := pferrors.ValidateDocumentID(id); err != nil {
		return document.Document{}, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document.Document{}, notFound(id)
		}
		return document.Document{}, pferrors.Wrap(pferrors.ErrCodeStorage, err, "read schematic file")
	}
	return document.Unmarshal(data)
}

func (s *FileStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "read schematic dir")
	}

	out := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		doc, err := document.Unmarshal(data)
		if err != nil {
			continue
		}
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := pferrors.ValidateDocumentID(id); err != nil {
		return notFound(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFound(id)
		}
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "remove schematic file")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for schematic files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
