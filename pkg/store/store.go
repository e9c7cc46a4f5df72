// Package store persists schematic documents.
//
// Four backends implement [Store]:
//   - [MemoryStore]: process-local map, used by tests and the API default
//   - [FileStore]: JSON files under ~/.config/pidforge/schematics/ (CLI default)
//   - [RedisStore]: shared storage for multi-instance API deployments
//   - [MongoStore]: document database storage
//
// Stores only see [document.Document] values. Reference validation against a
// catalog happens before Save, in the caller.
//
// # Usage
//
//	s, err := store.Open(ctx, store.Config{Backend: "file"})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	doc := document.FromDiagram(d, "Feed loop")
//	if err := s.Save(ctx, &doc); err != nil {
//	    return err
//	}
//	fmt.Println(doc.ID)
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pidforge/pkg/document"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Store is the interface for schematic storage backends.
type Store interface {
	// Save stores doc. An empty doc.ID is replaced with a fresh id and
	// doc.UpdatedAt is stamped, both written back into doc.
	Save(ctx context.Context, doc *document.Document) error

	// Load returns the document stored under id, or a NOT_FOUND error.
	Load(ctx context.Context, id string) (document.Document, error)

	// List returns summaries of every stored document, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes the document stored under id, or returns NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Summary describes a stored document without its contents.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	Components int       `json:"components"`
}

func summarize(doc document.Document) Summary {
	return Summary{
		ID:         doc.ID,
		Name:       doc.Name,
		UpdatedAt:  doc.UpdatedAt,
		Components: len(doc.Components),
	}
}

func sortSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}

// prepare assigns an id and timestamp before a write.
func prepare(doc *document.Document) error {
	if doc == nil {
		return pferrors.New(pferrors.ErrCodeInvalidInput, "nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := pferrors.ValidateDocumentID(doc.ID); err != nil {
		return err
	}
	if doc.Version == 0 {
		doc.Version = document.Version
	}
	doc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return nil
}

func notFound(id string) error {
	return pferrors.New(pferrors.ErrCodeNotFound, "schematic %q not found", id)
}

// Config selects and configures a backend for [Open].
type Config struct {
	Backend string // memory, file, redis or mongo

	Dir string // file backend; empty means ~/.config/pidforge/schematics

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendRedis, BackendMongo}
}

// Open creates the configured backend wrapped with [Instrument].
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	var (
		s   Store
		err error
	)
	switch backend {
	case "", BackendMemory:
		backend = BackendMemory
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = DialRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendMongo:
		s, err = DialMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, pferrors.New(pferrors.ErrCodeUnsupported, "unknown store backend %q (want one of %s)",
			cfg.Backend, strings.Join(Backends(), ", "))
	}
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "open %s store", backend)
	}
	return Instrument(s, backend), nil
}
