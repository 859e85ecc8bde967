// Command ledger-server serves the transaction ledger API backed by SQLite.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"wallet/internal/cli"
	"wallet/internal/config"
	apphttp "wallet/internal/http"
	applog "wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
)

func main() {
	cfg, err := cli.LoadConfig((*config.Config).ValidateServer)
	logger := cli.SetupLogger(cfg)
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := cli.InitSQLite(logger.WithComponent(applog.ComponentStorage).Logger, cfg.SQLiteDBPath)
	if err != nil {
		os.Exit(1)
	}
	defer repo.Close()

	rl := ratelimit.DefaultConfig()
	rl.RequestsPerSecond = cfg.RateLimitRPS
	rl.Burst = cfg.RateLimitBurst

	srv := apphttp.NewServer(":"+cfg.Port, repo, apphttp.Options{
		Logger:         logger,
		RateLimit:      rl,
		ReportCacheTTL: cfg.ReportCacheTTL,
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath,
		"rate_limit_rps", cfg.RateLimitRPS,
		"report_cache_ttl", cfg.ReportCacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
