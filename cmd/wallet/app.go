package main

import (
	"context"
	"fmt"
	"os"

	"wallet/internal/backend"
	"wallet/internal/cli"
	"wallet/internal/config"
	applog "wallet/internal/log"
	"wallet/internal/render"
	"wallet/internal/services"
)

// app is one CLI invocation's wiring: configuration, the ledger backend and
// the sync controller over it.
type app struct {
	cfg        *config.Config
	logger     *applog.Logger
	controller *services.SyncController
	cleanup    backend.CleanupFunc
	loaded     bool
}

// openApp loads configuration and connects a sync controller to the
// configured backend. extra validators run after the base validation.
func openApp(ctx context.Context, extra ...func(*config.Config) error) (*app, error) {
	validators := append([]func(*config.Config) error{(*config.Config).Validate}, extra...)
	cfg, err := cli.LoadConfig(validators...)
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentCLI)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	controller := services.NewSyncController(result.Client, cfg.LedgerUserID, services.SyncControllerConfig{
		Logger: logger.WithComponent(applog.ComponentSync).Logger,
	})
	return &app{cfg: cfg, logger: logger, controller: controller, cleanup: result.Cleanup}, nil
}

func (a *app) Close() {
	a.controller.Close()
	if a.cleanup != nil {
		if err := a.cleanup(); err != nil {
			a.logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}
}

// load fetches the snapshot. It fails only when nothing was ever loaded;
// otherwise the stale snapshot is returned with its error for display.
func (a *app) load(ctx context.Context) (services.Snapshot, error) {
	snap := a.controller.Load(ctx)
	if snap.Err != nil && !a.loaded {
		return snap, snap.Err
	}
	a.loaded = true
	return snap, nil
}

func (a *app) summaryInput(snap services.Snapshot) render.SummaryInput {
	return render.SummaryInput{
		UserID:       a.controller.UserID(),
		Currency:     a.cfg.Currency,
		Transactions: snap.Transactions,
		Report:       snap.Report,
		Err:          snap.Err,
	}
}

func printMarkdown(md string) {
	if err := render.Print(os.Stdout, md, render.Options{Style: *style, WordWrap: *wordWrap}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Println(md)
	}
}
