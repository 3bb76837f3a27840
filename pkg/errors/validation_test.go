package errors

import (
	"strings"
	"testing"
)

func TestValidateTag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid word", "alpha", false},
		{"valid numbered", "number3", false},
		{"valid with plus", "num+special", false},
		{"valid synset", "s.n.01", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"open paren", "foo(bar", true},
		{"close paren", "foo)", true},
		{"null byte", "foo\x00bar", true},
		{"tab", "foo\tbar", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTag) {
				t.Errorf("ValidateTag(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeUnknownTag,
		ErrCodeMalformedStructure,
		ErrCodeInvalidGrammar,
		ErrCodeInvalidTag,
		ErrCodeInvalidConfig,
		ErrCodeFileNotFound,
		ErrCodeOutput,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
