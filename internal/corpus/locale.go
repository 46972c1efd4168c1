// Package corpus holds the static copy used to phrase requests and the
// ready-made fallback prompts, per locale.
package corpus

import (
	"fmt"
	"sort"
	"unicode"

	"duetgen/internal/session"
)

const DefaultLocale = "en"

// Locale is read-only once registered.
type Locale struct {
	Name     string
	Language string
	Script   *unicode.RangeTable

	// Prefixes are boilerplate openers models like to prepend.
	Prefixes []string

	Stages   map[session.RelationshipStage]string
	Goals    map[session.EveningGoal]string
	Intimacy map[session.ContentType]map[session.IntimacyLevel]string
	Closings map[session.EveningGoal]string

	// Prompt is a text/template rendered by the prompt package.
	Prompt string
	// Variations are appended to the primary prompt, one per escalation step.
	Variations []string

	fallback map[session.ContentType]map[session.IntimacyLevel][]string
}

var locales = map[string]*Locale{}

func register(l *Locale) {
	if _, dup := locales[l.Name]; dup {
		panic(fmt.Sprintf("corpus: locale %q registered twice", l.Name))
	}
	locales[l.Name] = l
}

// Get returns the named locale.
func Get(name string) (*Locale, error) {
	l, ok := locales[name]
	if !ok {
		return nil, fmt.Errorf("corpus: unknown locale %q (have %v)", name, Names())
	}
	return l, nil
}

// MustGet is Get for package-level wiring and tests.
func MustGet(name string) *Locale {
	l, err := Get(name)
	if err != nil {
		panic(err)
	}
	return l
}

func Names() []string {
	names := make([]string, 0, len(locales))
	for n := range locales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fallback returns the ready-made prompts for (kind, level). A level with no
// dedicated list falls back to the conservative tier. The returned slice
// must not be modified.
func (l *Locale) Fallback(kind session.ContentType, level session.IntimacyLevel) []string {
	byLevel := l.fallback[kind]
	if prompts, ok := byLevel[level]; ok && len(prompts) > 0 {
		return prompts
	}
	return byLevel[session.Conservative]
}

// IntimacyPhrase describes level for kind, falling back to the conservative tier.
func (l *Locale) IntimacyPhrase(kind session.ContentType, level session.IntimacyLevel) string {
	byLevel := l.Intimacy[kind]
	if s, ok := byLevel[level]; ok {
		return s
	}
	return byLevel[session.Conservative]
}
