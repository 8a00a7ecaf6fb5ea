package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex"
	"github.com/kailas-cloud/figdex/internal/config"
)

// buildApp opens a figdex client configured from cfg.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*figdex.Client, error) {
	return figdex.New(ctx, clientOptions(cfg, logger)...)
}

func clientOptions(cfg *config.Config, logger *zap.Logger) []figdex.Option {
	s := &cfg.Search
	opts := []figdex.Option{
		figdex.WithSQLite(cfg.Database.Path),
		figdex.WithKeyPrefix(s.KeyPrefix),
		figdex.WithIndexName(s.IndexName),
		figdex.WithLimits(figdex.Limits{
			DefaultLimit: s.DefaultLimit,
			MaxLimit:     s.MaxLimit,
			FullLimit:    s.FullLimit,
		}),
		figdex.WithFallback(s.FallbackOverfetch, s.FallbackMaxCandidates),
		figdex.WithReadinessTimeout(time.Duration(s.ReadinessTimeout) * time.Second),
		figdex.WithLogger(logger),
	}

	if !s.Enabled {
		return opts
	}
	switch s.Driver {
	case config.DriverRedis:
		opts = append(opts, figdex.WithRedis(s.Password, s.Addrs...))
	case config.DriverBleve:
		opts = append(opts, figdex.WithBleve(s.BlevePath))
	}
	if s.TestMode {
		opts = append(opts, figdex.WithTestMode())
	}
	return opts
}
