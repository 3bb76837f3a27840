package grammar

import (
	"strings"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

// ParseStructure splits a parenthesis-delimited structure string into its
// tags, e.g. "(alpha)(number)" becomes ["alpha", "number"].
//
// The structure must be a non-empty sequence of "(tag)" groups with no text
// between groups, no nesting and no empty tag. Any violation returns a
// MALFORMED_STRUCTURE error.
func ParseStructure(s string) ([]string, error) {
	if s == "" {
		return nil, errors.New(errors.ErrCodeMalformedStructure, "empty structure")
	}

	var (
		tags  []string
		tag   strings.Builder
		inTag bool
	)
	for i, r := range s {
		switch {
		case r == '(':
			if inTag {
				return nil, errors.New(errors.ErrCodeMalformedStructure, "nested '(' at offset %d in %q", i, s)
			}
			inTag = true
			tag.Reset()
		case r == ')':
			if !inTag {
				return nil, errors.New(errors.ErrCodeMalformedStructure, "unbalanced ')' at offset %d in %q", i, s)
			}
			if tag.Len() == 0 {
				return nil, errors.New(errors.ErrCodeMalformedStructure, "empty tag at offset %d in %q", i, s)
			}
			tags = append(tags, tag.String())
			inTag = false
		case !inTag:
			return nil, errors.New(errors.ErrCodeMalformedStructure, "text outside parentheses at offset %d in %q", i, s)
		default:
			tag.WriteRune(r)
		}
	}
	if inTag {
		return nil, errors.New(errors.ErrCodeMalformedStructure, "unclosed '(' in %q", s)
	}
	return tags, nil
}

// FormatStructure is the inverse of ParseStructure.
func FormatStructure(tags []string) string {
	var b strings.Builder
	for _, t := range tags {
		b.WriteByte('(')
		b.WriteString(t)
		b.WriteByte(')')
	}
	return b.String()
}
