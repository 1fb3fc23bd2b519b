package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateLevelID checks that id is a canonical level UUID.
func ValidateLevelID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "level id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid level id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidID, "level id %q is not in canonical form", id)
	}
	return nil
}

// ValidateTemplateName validates a room template name.
//
// Names end up in file names, cache keys and rendered labels, so the rules
// are conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - No control characters
//   - No path separators
func ValidateTemplateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "template name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidConfig, "template name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "template name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidConfig, "template name cannot contain path separators")
	}
	return nil
}
