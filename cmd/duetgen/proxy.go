package main

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"duetgen/config"
	"duetgen/internal/corpus"
	"duetgen/internal/httpserver"
	"duetgen/internal/llm"
	"duetgen/internal/textfilter"
	"duetgen/internal/upstream"
)

func newProxyCmd(load loader) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the content service in front of the model vendor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := cfg.ValidateProxy(); err != nil {
				return fmt.Errorf("invalid proxy config: %w", err)
			}
			if port > 0 {
				cfg.Proxy.Port = port
			}

			locale, err := corpus.Get(cfg.Game.Locale)
			if err != nil {
				return err
			}

			gen, closeGen, err := newGenerator(cmd.Context(), cfg.Proxy, logger)
			if err != nil {
				return err
			}
			defer closeGen()

			h := upstream.NewHandler(gen, textfilter.Rules{Prefixes: locale.Prefixes, Script: locale.Script}, cfg.Proxy.Vendor)

			r := chi.NewRouter()
			httpserver.SetupProxyRouter(r, logger, h, cfg.Proxy.RateLimitPerMin, cfg.Proxy.RateLimitBurst, httpserver.Options{
				RequestTimeout: cfg.Server.RequestTimeout,
				MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			})

			logger.Info("starting content service",
				zap.String("vendor", cfg.Proxy.Vendor),
				zap.String("model", cfg.Proxy.Model),
				zap.Int("rate_limit_per_min", cfg.Proxy.RateLimitPerMin),
			)
			return listenAndServe(logger, cfg.Proxy.Port, r, cfg.Server.RequestTimeout)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides proxy.port)")
	return cmd
}

func newGenerator(ctx context.Context, cfg config.ProxyConfig, logger *zap.Logger) (llm.Generator, func(), error) {
	gen := llm.DefaultGeneration(cfg.Model)

	switch cfg.Vendor {
	case config.VendorOpenAI:
		client, err := llm.NewClient(llm.Config{
			BaseURL:         cfg.OpenAIBaseURL,
			APIKey:          cfg.OpenAIAPIKey,
			UpstreamTimeout: cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {}
		if closer, ok := client.(interface{ Close() error }); ok {
			closeFn = func() { _ = closer.Close() }
		}
		return llm.NewChatGenerator(client, gen), closeFn, nil

	default:
		g, err := llm.NewGeminiGenerator(ctx, llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.Timeout,
		}, gen, logger)
		if err != nil {
			return nil, nil, err
		}
		return g, func() {}, nil
	}
}
