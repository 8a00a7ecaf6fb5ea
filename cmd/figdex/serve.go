package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/figdex/internal/transport/chi"
	"github.com/kailas-cloud/figdex/internal/version"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(ctx context.Context, flags *globalFlags) error {
	cfg, logger, err := flags.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting figdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", flags.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.Bool("search_enabled", cfg.Search.Enabled),
		zap.String("search_driver", cfg.Search.Driver),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	client, err := buildApp(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	server := chiTransport.NewServer(client, client, client,
		time.Duration(cfg.Search.QueryTimeoutMs)*time.Millisecond, logger)

	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		RateLimit: chiTransport.RateLimit{
			RequestsPerSecond: cfg.HTTP.RateLimitRPS,
			Burst:             cfg.HTTP.RateLimitBurst,
		},
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
