package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// tagNameRegex matches tag names usable after '@'.
var tagNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTagName validates a tag name as declared by a processor.
func ValidateTagName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "tag name cannot be empty")
	}
	if !tagNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid tag name: %q", name)
	}
	return nil
}

// ValidateQuery validates a path query received from an external caller.
// The rules are intentionally conservative:
//   - No empty queries
//   - No whitespace or control characters
//   - Maximum length of 512 characters
func ValidateQuery(query string) error {
	if query == "" {
		return New(ErrCodeInvalidInput, "query cannot be empty")
	}

	const maxQueryLength = 512
	if len(query) > maxQueryLength {
		return New(ErrCodeInvalidInput, "query too long (max %d characters)", maxQueryLength)
	}

	for _, r := range query {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "query contains invalid characters")
		}
	}
	return nil
}

// ValidatePath validates a file path relative to an output root for safety.
// It prevents path traversal when rewritten files are materialized.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a backend URL against a set of allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
