package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/logging"
	redisAdapter "github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

// loadConfig resolves the effective configuration from the optional
// --config file and flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

// buildService wires a Service from config: logger, iteration bound,
// and the Redis run store when configured.
func buildService(cfg config.Config, logger *slog.Logger) (*espalier.Service, error) {
	opts := []espalier.Option{
		espalier.WithLogger(logger),
		espalier.WithMaxIterations(cfg.Engine.MaxIterations),
	}

	if cfg.Redis.Addr != "" {
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithTTL(time.Duration(cfg.Redis.RunTTL)))
		opts = append(opts, espalier.WithRunStore(store))
		logger.Info("using redis run store", "addr", cfg.Redis.Addr)
	}

	svc, err := espalier.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize espalier: %w", err)
	}
	return svc, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.LogLevel))
}
