package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"duetgen/config"
	"duetgen/internal/metrics"
	"duetgen/pkg/logging/logging"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "duetgen",
		Short:         "Question-and-dare generator for couples",
		Long:          "duetgen serves the couples game API, runs the content service that talks to the model vendor, or plays a round loop in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: ./config/config.yaml or ./config.yaml when present)")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		logger := logging.NewLogger(logging.Options{Env: cfg.Log.Env, Level: cfg.Log.Level})
		logging.SetDefault(logger)
		metrics.Register()
		return cfg, logger, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newProxyCmd(load),
		newPlayCmd(load),
	)
	return root
}

// loader loads config and builds the process logger once per command.
type loader func() (*config.Config, *zap.Logger, error)
