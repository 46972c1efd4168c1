package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"duetgen/internal/decision"
	"duetgen/internal/handlers"
	"duetgen/internal/httpserver"
)

func newServeCmd(load loader) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if port > 0 {
				cfg.Server.Port = port
			}

			logger.Info("loaded config",
				zap.Int("port", cfg.Server.Port),
				zap.String("locale", cfg.Game.Locale),
				zap.String("cache_backend", cfg.Cache.Backend),
				zap.String("remote_base_url", cfg.Remote.BaseURL),
			)

			// Each request picks its own decider; this one is only a default.
			orch, cleanup, err := newOrchestrator(cmd.Context(), cfg, decision.Static(false), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			r := chi.NewRouter()
			httpserver.SetupRouter(r, logger, handlers.NewContentHandler(orch), httpserver.Options{
				RequestTimeout: cfg.Server.RequestTimeout,
				MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			})

			logger.Info("starting game API", zap.String("session_id", orch.SessionID()))
			return listenAndServe(logger, cfg.Server.Port, r, cfg.Server.RequestTimeout)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

// listenAndServe runs h until SIGINT/SIGTERM, then drains in-flight requests.
func listenAndServe(logger *zap.Logger, port int, h http.Handler, requestTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return err
	case <-stop:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
