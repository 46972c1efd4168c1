package session

import (
	"strings"
	"testing"
)

func validContext() Context {
	return Context{
		Player1:           "A1",
		Player2:           "B2",
		RelationshipStage: StageFirstDates,
		EveningGoal:       GoalBreakRoutine,
		IntimacyLevel:     IntimacyCasual,
		CurrentPlayer:     PlayerOne,
		ContentType:       Question,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Context)
		wantErr bool
	}{
		{name: "complete", mutate: func(*Context) {}},
		{name: "missing player1", mutate: func(c *Context) { c.Player1 = "" }, wantErr: true},
		{name: "blank player2", mutate: func(c *Context) { c.Player2 = "   " }, wantErr: true},
		{name: "single letter name", mutate: func(c *Context) { c.Player1 = "A" }},
		{name: "name too long", mutate: func(c *Context) { c.Player1 = strings.Repeat("n", 41) }, wantErr: true},
		{name: "unknown stage", mutate: func(c *Context) { c.RelationshipStage = "engaged" }, wantErr: true},
		{name: "missing goal", mutate: func(c *Context) { c.EveningGoal = "" }, wantErr: true},
		{name: "missing intimacy", mutate: func(c *Context) { c.IntimacyLevel = "" }, wantErr: true},
		{name: "player three", mutate: func(c *Context) { c.CurrentPlayer = 3 }, wantErr: true},
		{name: "unknown type", mutate: func(c *Context) { c.ContentType = "truth" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContext()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	t.Parallel()

	c := validContext()
	d := c.With(Dare, PlayerTwo)

	if c.ContentType != Question || c.CurrentPlayer != PlayerOne {
		t.Fatalf("original context changed: %#v", c)
	}
	if d.TargetName() != "B2" || d.OtherName() != "A1" {
		t.Fatalf("unexpected names: target=%q other=%q", d.TargetName(), d.OtherName())
	}
	if PlayerTwo.Other() != PlayerOne {
		t.Fatalf("Other() of player two should be player one")
	}
}
