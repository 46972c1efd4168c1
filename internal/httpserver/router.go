package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"duetgen/internal/handlers"
	"duetgen/internal/metrics"
	"duetgen/internal/middleware"
	"duetgen/internal/remote"
	"duetgen/internal/upstream"
)

// Options tune the shared middleware chain.
type Options struct {
	RequestTimeout time.Duration // default: 60s
	MaxBodyBytes   int64         // default: 64 KB
}

func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 60 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 64 * 1024
	}
	return o
}

func base(r *chi.Mux, baseLogger *zap.Logger, service string, opts Options) {
	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger, service))
	r.Use(middleware.Recoverer())                  // panic recovery
	r.Use(middleware.CORS())                       // browser clients
	r.Use(middleware.Timeout(opts.RequestTimeout)) // request timeout
	r.Use(middleware.MaxBodySize(opts.MaxBodyBytes))
}

func health(r *chi.Mux) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}

// SetupRouter wires the game API.
func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, contentHandler *handlers.ContentHandler, opts Options) {
	base(r, baseLogger, "game", opts.withDefaults())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/content", contentHandler.Content)
		r.Get("/history", contentHandler.History)
		r.Delete("/history", contentHandler.ResetHistory)
	})

	health(r)
}

// SetupProxyRouter wires the content service. perMinute <= 0 disables the
// per-client rate limit.
func SetupProxyRouter(r *chi.Mux, baseLogger *zap.Logger, h *upstream.Handler, perMinute, burst int, opts Options) {
	base(r, baseLogger, "proxy", opts.withDefaults())

	r.With(middleware.RateLimit(perMinute, burst)).Post(remote.Path, h.Generate)

	health(r)
}
