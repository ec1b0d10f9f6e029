package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateBlockID validates a block identifier for safety and correctness.
// Block IDs come from external layout systems and end up as map keys, JSON
// fields, and persistence-layer identifiers.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateBlockID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBlockID, "block ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidBlockID, "block ID too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBlockID, "block ID contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidBlockID, "block ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// gridIDRegex matches valid grid identifiers. Grid IDs become file names,
// Redis keys, Mongo document IDs, and URL path segments, so the character
// set is restricted up front rather than escaped per backend.
var gridIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateGridID validates a grid identifier for use as a storage key.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of 128 characters
//   - Must start with an alphanumeric character
//   - Only alphanumerics, dots, underscores, and hyphens
//   - No path traversal sequences (..)
func ValidateGridID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGridID, "grid ID cannot be empty")
	}

	const maxGridIDLength = 128
	if len(id) > maxGridIDLength {
		return New(ErrCodeInvalidGridID, "grid ID too long (max %d characters)", maxGridIDLength)
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidGridID, "grid ID cannot contain path traversal sequences (..)")
	}

	if !gridIDRegex.MatchString(id) {
		return New(ErrCodeInvalidGridID, "invalid grid ID: %q", id)
	}

	return nil
}
