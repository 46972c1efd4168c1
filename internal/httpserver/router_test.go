package httpserver

import (
	"bytes"
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"duetgen/internal/cache"
	"duetgen/internal/corpus"
	"duetgen/internal/decision"
	"duetgen/internal/fallback"
	"duetgen/internal/handlers"
	"duetgen/internal/history"
	"duetgen/internal/orchestrator"
	"duetgen/internal/prompt"
	"duetgen/internal/remote"
	"duetgen/internal/retry"
	"duetgen/internal/textfilter"
	"duetgen/internal/upstream"
)

type echoGenerator struct{}

func (echoGenerator) Generate(context.Context, string) (string, error) {
	return "What would you cook for me tonight?", nil
}

// newStack runs the game API against an in-process content service.
func newStack(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)

	proxyMux := chi.NewRouter()
	SetupProxyRouter(proxyMux, logger, upstream.NewHandler(echoGenerator{}, textfilter.Rules{}, "test"), 0, 0, Options{})
	proxy := httptest.NewServer(proxyMux)
	t.Cleanup(proxy.Close)

	client, err := remote.NewHTTPClient(remote.Config{BaseURL: proxy.URL}, logger)
	require.NoError(t, err)

	locale := corpus.MustGet("en")
	composer, err := prompt.NewComposer(locale)
	require.NoError(t, err)
	h := history.NewTracker(history.DefaultCapacity)

	orch, err := orchestrator.New(orchestrator.Deps{
		Cache:    cache.NewMemoryStore(cache.DefaultMaxEntries, cache.DefaultTTL),
		History:  h,
		Composer: composer,
		Invoker: retry.New(client, retry.Config{
			Validate: textfilter.Rules{Prefixes: locale.Prefixes, Script: locale.Script}.Clean,
			Sleep:    func(context.Context, time.Duration) error { return nil },
		}, logger),
		Fallback: fallback.NewSelector(locale, h, rand.NewPCG(1, 2)),
		Decider:  decision.Static(false),
	}, logger)
	require.NoError(t, err)

	gameMux := chi.NewRouter()
	SetupRouter(gameMux, logger, handlers.NewContentHandler(orch), Options{})
	game := httptest.NewServer(gameMux)
	t.Cleanup(game.Close)
	return game
}

func TestGameAPIEndToEnd(t *testing.T) {
	srv := newStack(t)

	body := `{"player1":"A","player2":"B","relationship_stage":"first-dates","evening_goal":"break-routine",` +
		`"intimacy_level":"casual","current_player":1,"content_type":"question"}`

	resp, err := http.Post(srv.URL+"/v1/content", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	hr, err := http.Get(srv.URL + "/v1/history")
	require.NoError(t, err)
	defer hr.Body.Close()
	assert.Equal(t, http.StatusOK, hr.StatusCode)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestGameAPIRejectsOversizedBody(t *testing.T) {
	srv := newStack(t)

	big := bytes.Repeat([]byte("x"), 128*1024)
	resp, err := http.Post(srv.URL+"/v1/content", "application/json", bytes.NewReader(big))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestProxyRateLimit(t *testing.T) {
	mux := chi.NewRouter()
	SetupProxyRouter(mux, zaptest.NewLogger(t), upstream.NewHandler(echoGenerator{}, textfilter.Rules{}, "test"), 60, 1, Options{})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, remote.Path, bytes.NewBufferString(`{"instructions":"hi there"}`))
		req.RemoteAddr = "198.51.100.1:4000"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
