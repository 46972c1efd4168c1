// Package prompt turns a session context into the instruction text sent to
// the remote content service.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"duetgen/internal/corpus"
	"duetgen/internal/session"
)

// RecentLimit is how many history entries a request lists as "do not repeat".
const RecentLimit = 5

// VariantCount is the primary request plus its escalations.
const VariantCount = 3

type Composer struct {
	locale *corpus.Locale
	tmpl   *template.Template
}

type templateData struct {
	IsQuestion   bool
	Target       string
	Other        string
	Relationship string
	Intimacy     string
	Goal         string
	Closing      string
	Recent       []string
}

func NewComposer(locale *corpus.Locale) (*Composer, error) {
	if locale == nil {
		return nil, fmt.Errorf("prompt: locale is nil")
	}
	tmpl, err := template.New(locale.Name).Option("missingkey=error").Parse(locale.Prompt)
	if err != nil {
		return nil, fmt.Errorf("prompt: parse %s template: %w", locale.Name, err)
	}
	if len(locale.Variations) < VariantCount-1 {
		return nil, fmt.Errorf("prompt: locale %s needs %d variations, has %d",
			locale.Name, VariantCount-1, len(locale.Variations))
	}
	return &Composer{locale: locale, tmpl: tmpl}, nil
}

func (c *Composer) Locale() *corpus.Locale { return c.locale }

// BuildPrimary renders the base request. Only the last RecentLimit entries of
// recent are listed.
func (c *Composer) BuildPrimary(sc session.Context, recent []string) (string, error) {
	if len(recent) > RecentLimit {
		recent = recent[len(recent)-RecentLimit:]
	}

	data := templateData{
		IsQuestion:   sc.ContentType == session.Question,
		Target:       sc.TargetName(),
		Other:        sc.OtherName(),
		Relationship: c.locale.Stages[sc.RelationshipStage],
		Intimacy:     c.locale.IntimacyPhrase(sc.ContentType, sc.IntimacyLevel),
		Goal:         c.locale.Goals[sc.EveningGoal],
		Closing:      c.locale.Closings[sc.EveningGoal],
		Recent:       recent,
	}

	var b strings.Builder
	if err := c.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompt: render: %w", err)
	}
	return b.String(), nil
}

// BuildVariation strengthens the primary request for escalation step n (1 or 2).
// Step n carries every appeal up to and including its own.
func (c *Composer) BuildVariation(sc session.Context, recent []string, n int) (string, error) {
	if n < 1 || n > VariantCount-1 {
		return "", fmt.Errorf("prompt: variation %d out of range [1,%d]", n, VariantCount-1)
	}
	base, err := c.BuildPrimary(sc, recent)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(base)
	for _, appeal := range c.locale.Variations[:n] {
		b.WriteString("\n\n")
		b.WriteString(appeal)
	}
	return b.String(), nil
}

// Variants returns the primary request followed by each variation, in the
// order they are tried.
func (c *Composer) Variants(sc session.Context, recent []string) ([]string, error) {
	out := make([]string, 0, VariantCount)

	primary, err := c.BuildPrimary(sc, recent)
	if err != nil {
		return nil, err
	}
	out = append(out, primary)

	for n := 1; n < VariantCount; n++ {
		v, err := c.BuildVariation(sc, recent, n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
