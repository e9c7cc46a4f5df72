package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a human-entered schematic or group name.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	return nil
}

// identifierRegex matches catalog definition ids, parameter and port names.
var identifierRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateIdentifier validates a catalog identifier such as a definition id,
// parameter name or port name ("control_valve", "npsh_required").
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCatalog, "identifier cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidCatalog, "identifier too long (max 64 characters): %q", id)
	}
	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidCatalog, "invalid identifier: %q", id)
	}
	return nil
}

// documentIDRegex matches ids accepted by the persistence backends. They end
// up in file names and redis keys, so path separators are rejected.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateDocumentID validates a stored schematic id.
// It rejects ids that could be used for path traversal or key injection.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "schematic id cannot be empty")
	}
	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid schematic id: %q", id)
	}
	return nil
}
