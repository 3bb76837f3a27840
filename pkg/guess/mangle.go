package guess

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// gapPrefixes name the tags whose terminals are digits, symbols or
// character-class filler rather than words.
var gapPrefixes = []string{"number", "special", "char"}

// IsGap reports whether tag is a gap tag. Gap segments are never re-cased.
func IsGap(tag string) bool {
	for _, prefix := range gapPrefixes {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}

// Decode concatenates the selected word of every coordinate in tag order.
func Decode(p Point) string {
	var b strings.Builder
	for i := range p.indices {
		b.WriteString(p.Terminal(i).Word)
	}
	return b.String()
}

// Mangler produces letter case variants of points. It holds stateful
// case mappers and must not be shared between goroutines.
type Mangler struct {
	lower cases.Caser
	upper cases.Caser
}

// NewMangler returns a Mangler using language-neutral case mappings.
func NewMangler() *Mangler {
	return &Mangler{
		lower: cases.Lower(language.Und),
		upper: cases.Upper(language.Und),
	}
}

// Mangle returns the case variants of p using a fresh Mangler.
func Mangle(p Point) []string {
	return NewMangler().Variants(p)
}

// Variants returns the distinct case variants of p, in this order:
//
//  1. every word segment lowercased
//  2. every word segment uppercased
//  3. every word segment lowercased with its first letter uppercased
//  4. the lowercase variant with only its first character uppercased
//
// Gap segments are copied unchanged. If every tag is a gap the result is
// just the plain decode.
func (m *Mangler) Variants(p Point) []string {
	gaps := p.lat.gaps
	allGaps := true
	for _, g := range gaps {
		if !g {
			allGaps = false
			break
		}
	}
	if allGaps {
		return []string{Decode(p)}
	}

	var lower, upper, title strings.Builder
	for i, g := range gaps {
		word := p.Terminal(i).Word
		if g {
			lower.WriteString(word)
			upper.WriteString(word)
			title.WriteString(word)
			continue
		}
		lw := m.lower.String(word)
		lower.WriteString(lw)
		upper.WriteString(m.upper.String(word))
		title.WriteString(upperFirst(lw))
	}

	out := make([]string, 0, 4)
	for _, s := range [...]string{
		lower.String(),
		upper.String(),
		title.String(),
		upperFirst(lower.String()),
	} {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// upperFirst uppercases the first rune of s.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	u := unicode.ToUpper(r)
	if u == r {
		return s
	}
	return string(u) + s[size:]
}
