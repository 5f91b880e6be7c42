package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node identifiers read from model files.
const maxNodeIDLength = 512

// ValidateNodeID validates a model node identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No surrounding whitespace
//   - Maximum length of 512 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidModel, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidModel, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidModel, "node id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidModel, "node id %q has surrounding whitespace", id)
	}

	return nil
}

// typeNameRegex matches meta-type names: an identifier starting with a letter.
var typeNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateTypeName validates a meta-type name.
func ValidateTypeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModel, "type name cannot be empty")
	}
	if !typeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidModel, "invalid type name: %q", name)
	}
	return nil
}

// ValidateFormats checks that every requested output format is supported.
func ValidateFormats(formats []string, supported []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	for _, f := range formats {
		if !slices.Contains(supported, f) {
			return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", f, strings.Join(supported, ", "))
		}
	}
	return nil
}
