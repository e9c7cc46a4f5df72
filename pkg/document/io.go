package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Marshal encodes a document as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a document as indented JSON to w.
func Write(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a document to a JSON file.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "create %s", path)
	}
	defer f.Close()
	return Write(doc, f)
}

// Unmarshal decodes a JSON document.
func Unmarshal(data []byte) (Document, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a JSON document from r.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, pferrors.Wrap(pferrors.ErrCodeInvalidDocument, err, "decode document")
	}
	if doc.Version == 0 {
		doc.Version = Version
	}
	return doc, nil
}

// ReadFile reads a JSON document from path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, pferrors.Wrap(pferrors.ErrCodeStorage, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// normalize replaces nil slices so they encode as [] rather than null.
func normalize(doc Document) Document {
	if doc.Version == 0 {
		doc.Version = Version
	}
	if doc.Components == nil {
		doc.Components = []Component{}
	}
	if doc.Connections == nil {
		doc.Connections = []Connection{}
	}
	if doc.Groups == nil {
		doc.Groups = []Group{}
	}
	return doc
}
