package cache

import (
	"context"
	"time"

	"duetgen/internal/metrics"
	"duetgen/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with logging + metrics.
type LoggingStore struct {
	inner   Store
	backend string
}

// NewLoggingStore returns a store that logs and records metrics.
func NewLoggingStore(inner Store, backend string) Store {
	return &LoggingStore{inner: inner, backend: backend}
}

func (c *LoggingStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}
	metrics.CacheLookupsTotal.WithLabelValues(result).Inc()

	fields := append(c.keyFields(key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("prompt_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("prompt_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingStore) Put(ctx context.Context, key string, content string) error {
	start := time.Now()
	err := c.inner.Put(ctx, key, content)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	fields := append(c.keyFields(key),
		zap.Int("content_len", len(content)),
		zap.Float64("latency_ms", latencyMs),
	)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("prompt_cache_put", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("prompt_cache_put", fields...)
	}

	return err
}

func (c *LoggingStore) keyFields(key string) []zap.Field {
	fields := []zap.Field{
		zap.String("cache_backend", c.backend),
		zap.String("cache_key", key),
	}
	if k, ok := ParseKey(key); ok {
		fields = append(fields,
			zap.String("content_type", string(k.ContentType)),
			zap.Int("player", int(k.Player)),
			zap.String("intimacy_level", string(k.IntimacyLevel)),
		)
	}
	return fields
}
