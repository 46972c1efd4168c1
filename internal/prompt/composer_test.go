package prompt

import (
	"strings"
	"testing"

	"duetgen/internal/corpus"
	"duetgen/internal/session"
)

func testContext() session.Context {
	return session.Context{
		Player1:           "Dana",
		Player2:           "Noa",
		RelationshipStage: session.StageFirstDates,
		EveningGoal:       session.GoalBreakRoutine,
		IntimacyLevel:     session.IntimacyCasual,
		CurrentPlayer:     session.PlayerTwo,
		ContentType:       session.Question,
	}
}

func newComposer(t *testing.T, locale string) *Composer {
	t.Helper()
	c, err := NewComposer(corpus.MustGet(locale))
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return c
}

func TestBuildPrimaryEmbedsContext(t *testing.T) {
	t.Parallel()

	c := newComposer(t, "en")
	got, err := c.BuildPrimary(testContext(), nil)
	if err != nil {
		t.Fatalf("BuildPrimary: %v", err)
	}

	for _, want := range []string{
		"The question is for Noa",
		"so that Dana gets to know them better",
		"who are still at the very start of getting to know each other",
		"light and pleasant",
		"Be creative and surprising!",
		"English only",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("primary request missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Do not repeat") {
		t.Fatalf("empty history must not render a do-not-repeat list")
	}
}

func TestBuildPrimaryListsLastFiveOnly(t *testing.T) {
	t.Parallel()

	c := newComposer(t, "en")
	recent := []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7"}

	got, err := c.BuildPrimary(testContext(), recent)
	if err != nil {
		t.Fatalf("BuildPrimary: %v", err)
	}
	if strings.Contains(got, "- h2\n") || strings.Contains(got, "- h1\n") {
		t.Fatalf("older history leaked into request:\n%s", got)
	}
	for _, h := range recent[2:] {
		if !strings.Contains(got, "- "+h) {
			t.Fatalf("request missing %q:\n%s", h, got)
		}
	}
}

func TestBuildPrimaryIsPure(t *testing.T) {
	t.Parallel()

	c := newComposer(t, "he")
	sc := testContext().With(session.Dare, session.PlayerOne)

	a, err := c.BuildPrimary(sc, []string{"x"})
	if err != nil {
		t.Fatalf("BuildPrimary: %v", err)
	}
	b, _ := c.BuildPrimary(sc, []string{"x"})
	if a != b {
		t.Fatalf("expected identical output for identical input")
	}
	if !strings.Contains(a, "האתגר מיועד לDana") {
		t.Fatalf("dare should target player one:\n%s", a)
	}
}

func TestVariantsEscalate(t *testing.T) {
	t.Parallel()

	c := newComposer(t, "en")
	variants, err := c.Variants(testContext(), nil)
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	if len(variants) != VariantCount {
		t.Fatalf("expected %d variants, got %d", VariantCount, len(variants))
	}

	appeals := c.Locale().Variations
	if strings.Contains(variants[0], appeals[0]) {
		t.Fatalf("primary must not carry an escalation appeal")
	}
	if !strings.HasPrefix(variants[1], variants[0]) || !strings.HasSuffix(variants[1], appeals[0]) {
		t.Fatalf("variation 1 should extend the primary request")
	}
	if !strings.Contains(variants[2], appeals[0]) || !strings.HasSuffix(variants[2], appeals[1]) {
		t.Fatalf("variation 2 should carry both appeals")
	}

	if _, err := c.BuildVariation(testContext(), nil, 3); err == nil {
		t.Fatalf("expected out of range error")
	}
}
