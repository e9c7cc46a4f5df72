package editor

import (
	"github.com/matzehuels/pidforge/pkg/catalog"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// Property is one row of the property view.
type Property struct {
	catalog.Parameter
	Value   any    // override, or the definition default
	Display string // Value formatted with its unit
}

// Properties is everything the property view shows for one instance.
type Properties struct {
	ID          string
	Definition  *catalog.Definition
	Position    geometry.Point
	GroupID     string
	Values      []Property
	Ports       []catalog.Port
	Constraints []string
}

// Properties returns the property view of instance id.
func (s *Surface) Properties(id string) (Properties, error) {
	in, ok := s.d.Component(id)
	if !ok {
		return Properties{}, pferrors.New(pferrors.ErrCodeNotFound, "component %q not found", id)
	}
	def := in.Definition
	props := Properties{
		ID:          in.ID,
		Definition:  def,
		Position:    in.Position,
		GroupID:     in.GroupID,
		Values:      make([]Property, len(def.Parameters)),
		Ports:       def.Ports,
		Constraints: def.Constraints,
	}
	for i, p := range def.Parameters {
		v := in.Value(p.Name)
		props.Values[i] = Property{Parameter: p, Value: v, Display: p.FormatValue(v)}
	}
	return props, nil
}

// SelectedProperties returns the property view of the selection when
// exactly one instance is selected.
func (s *Surface) SelectedProperties() (Properties, bool) {
	id, ok := s.sel.Single()
	if !ok {
		return Properties{}, false
	}
	props, err := s.Properties(id)
	return props, err == nil
}

// SetProperty parses raw form input for parameter name of instance id,
// validates it against the parameter's metadata and writes it. Invalid
// input returns an INVALID_PARAMETER error and writes nothing.
func (s *Surface) SetProperty(id, name, raw string) error {
	in, ok := s.d.Component(id)
	if !ok {
		return pferrors.New(pferrors.ErrCodeNotFound, "component %q not found", id)
	}
	p, ok := in.Definition.Parameter(name)
	if !ok {
		return pferrors.New(pferrors.ErrCodeNotFound, "%s has no parameter %q", in.Definition.Label(), name)
	}
	v, err := p.Parse(raw)
	if err != nil {
		return err
	}
	if err := p.Validate(v); err != nil {
		return err
	}
	if err := s.d.SetParameter(id, name, v); err != nil {
		return err
	}
	s.logger.Debug("set parameter", "component", id, "name", name, "value", p.FormatValue(v))
	return nil
}
