package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Parameter describes one editable value of a component.
// Default may be nil, meaning the engineer has to supply a value.
type Parameter struct {
	Name     string   `toml:"name"`
	Default  any      `toml:"default"`
	Unit     string   `toml:"unit"`
	Required bool     `toml:"required"`
	Options  []string `toml:"options"`
}

// Numeric reports whether values of this parameter are parsed as numbers.
// Parameters with a unit and no enumerated options are numeric.
func (p Parameter) Numeric() bool { return p.Unit != "" && len(p.Options) == 0 }

// Parse converts raw property-form input into a value for this parameter.
// Blank input yields nil. The result is not checked against Required; use
// Validate for that.
func (p Parameter) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if p.Numeric() {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, pferrors.New(pferrors.ErrCodeInvalidParameter, "%s must be a number (%s)", p.Name, p.Unit)
		}
		return f, nil
	}
	return raw, nil
}

// Validate checks value against the required flag and enumerated options.
func (p Parameter) Validate(value any) error {
	if isBlank(value) {
		if p.Required {
			return pferrors.New(pferrors.ErrCodeInvalidParameter, "%s is required", p.Name)
		}
		return nil
	}
	if len(p.Options) > 0 {
		s, ok := value.(string)
		if !ok || !slices.Contains(p.Options, s) {
			return pferrors.New(pferrors.ErrCodeInvalidParameter, "%s must be one of %s", p.Name, strings.Join(p.Options, ", "))
		}
	}
	return nil
}

// FormatValue renders a parameter value for display, appending the unit.
func (p Parameter) FormatValue(value any) string {
	if isBlank(value) {
		return "—"
	}
	var s string
	switch v := value.(type) {
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if p.Unit != "" {
		return s + " " + p.Unit
	}
	return s
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
