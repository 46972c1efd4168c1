package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"duetgen/internal/cache"
	"duetgen/internal/corpus"
	"duetgen/internal/decision"
	"duetgen/internal/fallback"
	"duetgen/internal/history"
	"duetgen/internal/orchestrator"
	"duetgen/internal/prompt"
	"duetgen/internal/remote"
	"duetgen/internal/retry"
	"duetgen/internal/session"
	"duetgen/internal/textfilter"
)

func TestPlayLoopAlternatesPlayersAndFallsBack(t *testing.T) {
	locale := corpus.MustGet("en")
	composer, err := prompt.NewComposer(locale)
	require.NoError(t, err)

	var targets []int
	service := remote.ClientFunc(func(_ context.Context, req *remote.Request) (string, error) {
		targets = append(targets, req.Context.CurrentPlayer)
		if req.Context.PromptType == string(session.Dare) {
			return "", &remote.Error{Kind: remote.KindServerError, Status: 500}
		}
		return "What is your favourite memory of us?", nil
	})

	// question, dare (fails, then "l" for local content), quit
	in := strings.NewReader("q\nd\nl\nx\n")
	var out bytes.Buffer
	term := decision.NewTerminal(in, &out)

	h := history.NewTracker(history.DefaultCapacity)
	orch, err := orchestrator.New(orchestrator.Deps{
		Cache:    cache.NewMemoryStore(cache.DefaultMaxEntries, cache.DefaultTTL),
		History:  h,
		Composer: composer,
		Invoker: retry.New(service, retry.Config{
			Validate: textfilter.Rules{Prefixes: locale.Prefixes, Script: locale.Script}.Clean,
			Sleep:    func(context.Context, time.Duration) error { return nil },
		}, zaptest.NewLogger(t)),
		Fallback: fallback.NewSelector(locale, h, rand.NewPCG(3, 3)),
		Decider:  term,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	sc := session.Context{
		Player1:           "Dana",
		Player2:           "Noa",
		RelationshipStage: session.StageLongTime,
		EveningGoal:       session.GoalEmotion,
		IntimacyLevel:     session.IntimacyCasual,
		CurrentPlayer:     session.PlayerOne,
		ContentType:       session.Question,
	}

	require.NoError(t, playLoop(context.Background(), orch, term, sc, zaptest.NewLogger(t)))

	text := out.String()
	assert.Contains(t, text, "Dana's turn")
	assert.Contains(t, text, "Noa's turn")
	assert.Contains(t, text, "What is your favourite memory of us?")
	assert.Contains(t, text, "[r] retry")

	require.NotEmpty(t, targets)
	assert.Equal(t, 1, targets[0])
	assert.Equal(t, 2, targets[len(targets)-1])
	assert.Equal(t, 2, h.Len())
}
