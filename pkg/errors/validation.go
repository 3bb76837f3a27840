package errors

import (
	"strings"
	"unicode"
)

// maxTagLength bounds tag names read from structure strings.
const maxTagLength = 128

// ValidateTag validates a grammar tag name.
//
// Tags name terminal list files (nonterminals/<tag>.txt), so the rules are
// the ones a file basename needs:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or parent directory references
//   - No parentheses (they delimit tags in structure strings)
//   - Maximum length of 128 bytes
func ValidateTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidTag, "tag name cannot be empty")
	}

	if len(tag) > maxTagLength {
		return New(ErrCodeInvalidTag, "tag name too long (max %d characters)", maxTagLength)
	}

	for _, r := range tag {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTag, "tag name contains invalid control characters")
		}
	}

	if strings.ContainsAny(tag, "/\\()") {
		return New(ErrCodeInvalidTag, "tag name contains invalid characters: %q", tag)
	}

	if tag == "." || tag == ".." {
		return New(ErrCodeInvalidTag, "tag name cannot be a directory reference")
	}

	return nil
}
