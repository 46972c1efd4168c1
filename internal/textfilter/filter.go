// Package textfilter cleans generated text before it is shown to players.
package textfilter

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMinLength = 10
	DefaultMaxLength = 500
)

var (
	ErrEmpty       = errors.New("textfilter: empty text")
	ErrTooShort    = errors.New("textfilter: text too short")
	ErrTooLong     = errors.New("textfilter: text too long")
	ErrWrongScript = errors.New("textfilter: text has no characters in the required script")
)

// quotePairs maps an opening quote to the closing quotes that may pair with it.
var quotePairs = map[rune]string{
	'"': `"`,
	'\'': `'`,
	'“': `”"`,
	'„': `“”`,
	'«': `»`,
}

// Rules configures Clean. Script may be nil to skip the script check.
type Rules struct {
	Prefixes  []string
	MinLength int
	MaxLength int
	Script    *unicode.RangeTable
}

func (r Rules) withDefaults() Rules {
	if r.MinLength <= 0 {
		r.MinLength = DefaultMinLength
	}
	if r.MaxLength <= 0 {
		r.MaxLength = DefaultMaxLength
	}
	return r
}

// Clean trims text, strips boilerplate prefixes and wrapping quotes, then
// checks length (in runes) and script. It returns the cleaned text or one of
// the package errors wrapped with detail.
func (r Rules) Clean(text string) (string, error) {
	r = r.withDefaults()

	cleaned := strings.TrimSpace(text)
	cleaned = r.stripPrefixes(cleaned)
	cleaned = stripWrappingQuotes(cleaned)

	n := utf8.RuneCountInString(cleaned)
	switch {
	case n == 0:
		return "", ErrEmpty
	case n < r.MinLength:
		return "", fmt.Errorf("%w: %d < %d", ErrTooShort, n, r.MinLength)
	case n > r.MaxLength:
		return "", fmt.Errorf("%w: %d > %d", ErrTooLong, n, r.MaxLength)
	}

	if r.Script != nil && !hasScript(cleaned, r.Script) {
		return "", ErrWrongScript
	}

	return cleaned, nil
}

// stripPrefixes removes known prefixes until none matches.
func (r Rules) stripPrefixes(s string) string {
	for {
		stripped := false
		for _, p := range r.Prefixes {
			if p == "" || len(s) < len(p) {
				continue
			}
			if strings.EqualFold(s[:len(p)], p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
			}
		}
		if !stripped {
			return s
		}
	}
}

// stripWrappingQuotes removes one pair of quotes when the first and last
// runes form a matching pair. A lone quote at either end is kept.
func stripWrappingQuotes(s string) string {
	first, fw := utf8.DecodeRuneInString(s)
	last, lw := utf8.DecodeLastRuneInString(s)
	if len(s) < fw+lw {
		return s
	}
	closers, ok := quotePairs[first]
	if !ok || !strings.ContainsRune(closers, last) {
		return s
	}
	return strings.TrimSpace(s[fw : len(s)-lw])
}

func hasScript(s string, table *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}
