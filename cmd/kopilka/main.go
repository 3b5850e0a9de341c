package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"kopilka/internal/cli"
	"kopilka/internal/flow"
	"kopilka/internal/identity"
	"kopilka/internal/session"
	"kopilka/internal/telegram"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateTelegram(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ids := identity.NewStore(cfg.StateFile)
	led, err := cli.NewLedger(ctx, cfg, ids)
	if err != nil {
		logger.Error("failed to initialize ledger backend", "error", err, "backend", cfg.LedgerBackend)
		os.Exit(1)
	}

	// Older spreadsheets predate the registry sheet; create it when the
	// table already exists. A missing table means first /start will
	// provision everything.
	provisioned := cfg.LedgerBackend != "sheets" || cfg.SpreadsheetID != ""
	if !provisioned {
		if id, err := ids.Load(); err == nil && !id.IsZero() {
			provisioned = true
		}
	}
	if provisioned {
		if err := led.EnsureRegistry(ctx); err != nil {
			logger.Error("failed to ensure category registry", "error", err)
			os.Exit(1)
		}
	}

	sessions := session.NewStore()
	machine := flow.New(led, sessions, cfg.RecentLimit)

	bot, err := telegram.New(cfg.BotToken, cfg.AllowedUserID, machine, sessions, ids, led)
	if err != nil {
		logger.Error("failed to initialize telegram bot", "error", err)
		os.Exit(1)
	}

	logger.Info("starting kopilka", "backend", cfg.LedgerBackend, "recent_limit", cfg.RecentLimit)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped gracefully")
}
