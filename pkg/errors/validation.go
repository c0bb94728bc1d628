package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// idRegex matches identifiers usable for scene, target and callout ids.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID validates an identifier used for scene elements and stored
// scenes. Ids double as node handles and store keys, so they are kept to a
// conservative character set:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Letters, digits, dot, underscore and dash, starting with a letter or digit
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s id cannot be empty", kind)
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidID, "%s id too long (max 128 characters)", kind)
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid %s id: %q", kind, id)
	}
	return nil
}

// ValidatePath validates an output or scene file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for the browser host.
// Only http, https and file URLs are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https or file scheme")
}
