package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// The JSON form matches the catalog API: parameters and ports ("connections")
// are objects keyed by name. encoding/json sorts map keys, so ordered objects
// are written and read by hand to keep declaration order.

type jsonParameter struct {
	Value    any      `json:"value"`
	Unit     string   `json:"unit,omitempty"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type jsonPort struct {
	Type      Kind      `json:"type"`
	Direction Direction `json:"direction"`
}

// jsonPortFields is the decoding side of jsonPort. Both keys are required.
type jsonPortFields struct {
	Type      *Kind      `json:"type"`
	Direction *Direction `json:"direction"`
}

type jsonDefinition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Icon        string          `json:"icon"`
	Parameters  json.RawMessage `json:"parameters"`
	Connections json.RawMessage `json:"connections"`
	Constraints []string        `json:"constraints"`
}

// MarshalJSON encodes the definition in catalog API form.
func (d *Definition) MarshalJSON() ([]byte, error) {
	params, err := marshalObject(len(d.Parameters), func(i int) (string, any) {
		p := d.Parameters[i]
		return p.Name, jsonParameter{Value: p.Default, Unit: p.Unit, Required: p.Required, Options: p.Options}
	})
	if err != nil {
		return nil, err
	}
	ports, err := marshalObject(len(d.Ports), func(i int) (string, any) {
		p := d.Ports[i]
		return p.Name, jsonPort{Type: p.Kind, Direction: p.Direction}
	})
	if err != nil {
		return nil, err
	}
	constraints := d.Constraints
	if constraints == nil {
		constraints = []string{}
	}
	return json.Marshal(jsonDefinition{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Icon:        d.Icon,
		Parameters:  params,
		Connections: ports,
		Constraints: constraints,
	})
}

// UnmarshalJSON decodes the catalog API form, preserving key order.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw jsonDefinition
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Definition{
		ID:          raw.ID,
		Name:        raw.Name,
		Category:    raw.Category,
		Icon:        raw.Icon,
		Constraints: raw.Constraints,
	}
	err := decodeObject(raw.Parameters, func(name string, v json.RawMessage) error {
		var p jsonParameter
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		d.Parameters = append(d.Parameters, Parameter{
			Name: name, Default: p.Value, Unit: p.Unit, Required: p.Required, Options: p.Options,
		})
		return nil
	})
	if err != nil {
		return err
	}
	return decodeObject(raw.Connections, func(name string, v json.RawMessage) error {
		var p jsonPortFields
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("port %s: %w", name, err)
		}
		switch {
		case p.Type == nil:
			return fmt.Errorf("port %s: missing type", name)
		case p.Direction == nil:
			return fmt.Errorf("port %s: missing direction", name)
		}
		d.Ports = append(d.Ports, Port{Name: name, Kind: *p.Type, Direction: *p.Direction})
		return nil
	})
}

// MarshalJSON encodes the catalog as an object keyed by definition id.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return marshalObject(len(c.order), func(i int) (string, any) {
		id := c.order[i]
		return id, c.defs[id]
	})
}

// ParseJSON decodes a catalog in API form: an object keyed by definition id.
// A definition without an "id" field takes its key.
func ParseJSON(data []byte) (*Catalog, error) {
	var defs []*Definition
	err := decodeObject(data, func(key string, v json.RawMessage) error {
		d := new(Definition)
		if err := json.Unmarshal(v, d); err != nil {
			return fmt.Errorf("component %s: %w", key, err)
		}
		if d.ID == "" {
			d.ID = key
		}
		defs = append(defs, d)
		return nil
	})
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeInvalidCatalog, err, "parse catalog")
	}
	return New(defs...)
}

func marshalObject(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range n {
		key, value := entry(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeObject walks a JSON object in document order. A missing or null
// object is treated as empty.
func decodeObject(data []byte, fn func(key string, value json.RawMessage) error) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
