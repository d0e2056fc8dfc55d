package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateKey validates a store key for safety and correctness.
// Keys become file names in the file store, so the rules reject anything
// that could escape the store directory:
//   - No empty keys
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > 128 {
		return New(ErrCodeInvalidKey, "key too long (max 128 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// identifierRegex matches identifiers used in schedule definition files.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateIdentifier validates a stop or route identifier from a schedule
// definition file.
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid %s id: %q", kind, id)
	}
	return nil
}
