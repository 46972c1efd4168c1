package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"

	"duetgen/config"
	"duetgen/internal/cache"
	"duetgen/internal/corpus"
	"duetgen/internal/decision"
	"duetgen/internal/fallback"
	"duetgen/internal/history"
	"duetgen/internal/orchestrator"
	"duetgen/internal/prompt"
	"duetgen/internal/remote"
	"duetgen/internal/retry"
	"duetgen/internal/textfilter"
)

// newCacheStore connects the configured backend. The returned func closes
// whatever client was opened.
func newCacheStore(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (cache.Store, func(), error) {
	var clients cache.Clients
	closeFn := func() {}

	switch cfg.Backend {
	case cache.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		// Fail fast if Redis is misconfigured
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			logger.Error("redis connection failed", zap.Error(err))
			return nil, nil, err
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
		clients.Redis = client
		closeFn = func() { _ = client.Close() }

	case cache.BackendValkey:
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.ValkeyAddr}})
		if err != nil {
			logger.Error("valkey connection failed", zap.Error(err))
			return nil, nil, err
		}
		logger.Info("valkey connection established", zap.String("addr", cfg.ValkeyAddr))
		clients.Valkey = client
		closeFn = client.Close
	}

	store := cache.NewStore(cache.Config{
		Backend:    cfg.Backend,
		TTL:        cfg.TTL,
		MaxEntries: cfg.MaxEntries,
		Prefix:     cfg.Prefix,
	}, clients)

	return cache.NewLoggingStore(store, cfg.Backend), closeFn, nil
}

// newOrchestrator assembles one game session against the content service.
func newOrchestrator(ctx context.Context, cfg *config.Config, decider decision.Port, logger *zap.Logger) (*orchestrator.Orchestrator, func(), error) {
	locale, err := corpus.Get(cfg.Game.Locale)
	if err != nil {
		return nil, nil, err
	}
	composer, err := prompt.NewComposer(locale)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := newCacheStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cache: %w", err)
	}

	client, err := remote.NewHTTPClient(remote.Config{BaseURL: cfg.Remote.BaseURL}, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	ctrl := retry.New(client, retry.Config{
		MaxAttempts:    cfg.Remote.MaxAttempts,
		BaseDelay:      cfg.Remote.BaseDelay,
		AttemptTimeout: cfg.Remote.AttemptTimeout,
		MaxRetryAfter:  cfg.Remote.MaxRetryAfter,
		Validate:       textfilter.Rules{Prefixes: locale.Prefixes, Script: locale.Script}.Clean,
	}, logger)

	h := history.NewTracker(cfg.Game.HistoryCapacity)
	orch, err := orchestrator.New(orchestrator.Deps{
		Cache:    store,
		History:  h,
		Composer: composer,
		Invoker:  ctrl,
		Fallback: fallback.NewSelector(locale, h, nil),
		Decider:  decider,
	}, logger)
	if err != nil {
		closeStore()
		_ = client.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = client.Close()
		closeStore()
	}
	return orch, cleanup, nil
}
