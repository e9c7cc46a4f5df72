package catalog

import (
	_ "embed"
	"sync"

	"github.com/BurntSushi/toml"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

//go:embed default.toml
var defaultTOML []byte

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the embedded catalog. It is parsed once on first access.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseTOML(defaultTOML)
		if err != nil {
			panic("catalog: embedded default.toml: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

type tomlCatalog struct {
	Components []*Definition `toml:"component"`
}

// ParseTOML decodes a catalog file made of [[component]] tables with nested
// [[component.parameter]] and [[component.port]] arrays. Arrays of tables keep
// document order, which fixes the port layout order.
func ParseTOML(data []byte) (*Catalog, error) {
	var doc tomlCatalog
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeInvalidCatalog, err, "parse catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, pferrors.New(pferrors.ErrCodeInvalidCatalog, "unknown catalog key %q", undecoded[0].String())
	}
	for _, d := range doc.Components {
		normalizeDefaults(d)
	}
	return New(doc.Components...)
}

// normalizeDefaults converts TOML integers to float64 so defaults compare
// equal to values decoded from JSON.
func normalizeDefaults(d *Definition) {
	for i, p := range d.Parameters {
		if n, ok := p.Default.(int64); ok {
			d.Parameters[i].Default = float64(n)
		}
	}
}
