package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: prompt cache lookups by result (hit | miss | error).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_cache_lookups_total",
			Help: "Total number of prompt cache lookups by result.",
		},
		[]string{"result"},
	)

	// Counter: delivered content by source (cache | remote | fallback).
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "Total number of delivered prompts by source.",
		},
		[]string{"source"},
	)

	// Counter: remote content service attempts by outcome kind ("ok" on success).
	RemoteAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_attempts_total",
			Help: "Total number of remote content service attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// Histogram: single remote attempt latency in seconds.
	RemoteLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "remote_attempt_latency_seconds",
			Help:    "Latency of a single remote content service attempt in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)

	// Counter: answers given at the user-decision boundary (retry | fallback).
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decisions_total",
			Help: "Total number of user decisions after remote exhaustion.",
		},
		[]string{"choice"},
	)

	FallbackResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fallback_history_resets_total",
			Help: "Times the fallback corpus was exhausted and history was reset.",
		},
	)

	// Counter: requests rejected by the proxy rate limiter.
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "proxy_rate_limited_total",
			Help: "Total number of proxy requests rejected by the rate limiter.",
		},
	)

	// Histogram: HTTP latency in seconds.
	HTTPLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		CacheLookupsTotal,
		GenerationsTotal,
		RemoteAttemptsTotal,
		RemoteLatencySeconds,
		DecisionsTotal,
		FallbackResetsTotal,
		RateLimitedTotal,
		HTTPLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// capture status code
		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		HTTPLatencySeconds.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
