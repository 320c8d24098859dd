package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/irfndi/vix-alert-go/internal/app"
	"github.com/irfndi/vix-alert-go/internal/config"
	"github.com/irfndi/vix-alert-go/internal/logging"
	"github.com/irfndi/vix-alert-go/internal/marketdata"
	"github.com/irfndi/vix-alert-go/internal/retry"
	"github.com/irfndi/vix-alert-go/internal/telegram"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env if present; deployments normally set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return app.ExitRuntimeFailure
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	runLog := logging.RunEntry(logger, "vix-alert")

	// Without credentials no alert and no failure notice can be delivered,
	// so bail out before touching the network
	if err := cfg.ValidateCredentials(); err != nil {
		runLog.WithError(err).Error("Telegram credentials not configured")
		return app.ExitMissingCredentials
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := marketdata.NewService(&cfg.MarketData, runLog)

	notifier, err := telegram.NewNotifier(&cfg.Telegram, retry.Policy{
		MaxAttempts: cfg.Telegram.MaxAttempts,
		Backoff:     retry.LinearBackoff(cfg.Telegram.GetRetryDelay()),
	}, runLog)
	if err != nil {
		runLog.WithError(err).Error("Failed to create telegram notifier")
		return app.ExitRuntimeFailure
	}

	return app.New(cfg, fetcher, notifier, runLog).Run(ctx)
}
