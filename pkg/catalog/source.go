package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Source is the catalog collaborator. Implementations are read once at
// session start; the editor never reloads definitions mid-session.
type Source interface {
	ListDefinitions(ctx context.Context) (*Catalog, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Catalog, error)

func (f SourceFunc) ListDefinitions(ctx context.Context) (*Catalog, error) { return f(ctx) }

// Static returns a Source that always yields c.
func Static(c *Catalog) Source {
	return SourceFunc(func(context.Context) (*Catalog, error) { return c, nil })
}

// DefaultSource returns a Source backed by the embedded catalog.
func DefaultSource() Source { return Static(Default()) }

// FileSource returns a Source that reads path on every call.
// The format is chosen by extension: .toml or .json.
func FileSource(path string) Source {
	return SourceFunc(func(context.Context) (*Catalog, error) { return LoadFile(path) })
}

// LoadFile reads a catalog from a .toml or .json file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "read catalog %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, pferrors.New(pferrors.ErrCodeInvalidFormat, "unsupported catalog format %q (want .toml or .json)", filepath.Ext(path))
	}
}
