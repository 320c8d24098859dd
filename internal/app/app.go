// Package app wires the market data fetcher, the trend analysis and the
// Telegram notifier into a single one-shot alert run and maps the outcome to
// a process exit code.
package app

import (
	"context"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/vix-alert-go/internal/alert"
	"github.com/irfndi/vix-alert-go/internal/analysis"
	"github.com/irfndi/vix-alert-go/internal/config"
	"github.com/irfndi/vix-alert-go/internal/models"
)

// Exit codes returned by Run. Schedulers key on these: 2 means the
// deployment is missing credentials and retrying is pointless.
const (
	ExitSuccess            = 0
	ExitRuntimeFailure     = 1
	ExitMissingCredentials = 2
)

// SeriesFetcher loads the daily close series to analyse.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context) (models.TimeSeries, error)
}

// AlertSender delivers a message to the configured chat.
type AlertSender interface {
	Send(ctx context.Context, text string) (*tgmodels.Message, error)
}

// App runs one fetch-analyse-notify cycle.
type App struct {
	cfg     *config.Config
	fetcher SeriesFetcher
	sender  AlertSender
	builder *alert.Builder
	logger  logrus.FieldLogger
}

func New(cfg *config.Config, fetcher SeriesFetcher, sender AlertSender, logger logrus.FieldLogger) *App {
	return &App{
		cfg:     cfg,
		fetcher: fetcher,
		sender:  sender,
		builder: alert.NewBuilder(cfg.Analysis.Lambda, cfg.Analysis.RSIPeriod, cfg.Analysis.RangeWindow),
		logger:  logger,
	}
}

// Run executes the alert cycle and returns the process exit code. Any
// runtime failure is reported to the chat on a best effort basis before the
// non-zero code is returned.
func (a *App) Run(ctx context.Context) int {
	if err := a.runAlert(ctx); err != nil {
		a.logger.WithError(err).Error("Alert run failed")
		a.notifyFailure(ctx, err)
		return ExitRuntimeFailure
	}
	return ExitSuccess
}

func (a *App) runAlert(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	series, err := a.fetcher.FetchSeries(ctx)
	if err != nil {
		return err
	}

	smoothed, err := analysis.EwmaSeries(series, a.cfg.Analysis.Lambda)
	if err != nil {
		return err
	}

	obs, err := analysis.LatestObservation(series, smoothed)
	if err != nil {
		return err
	}

	marketCtx := analysis.BuildMarketContext(series, a.cfg.Analysis.RSIPeriod, a.cfg.Analysis.RangeWindow)

	text := a.builder.Build(obs, marketCtx)
	a.logger.WithFields(logrus.Fields{
		"date":        obs.Date.String(),
		"close":       obs.Raw,
		"ewma":        obs.Smoothed,
		"above_trend": obs.AboveTrend,
	}).Info("Prepared alert message")

	if _, err := a.sender.Send(ctx, text); err != nil {
		return err
	}

	a.logger.Info("Alert delivered")
	return nil
}

// notifyFailure reports runErr to the chat. A delivery failure here is
// logged and swallowed; the run error is what the caller acts on.
func (a *App) notifyFailure(ctx context.Context, runErr error) {
	if _, err := a.sender.Send(ctx, alert.FailureMessage(runErr)); err != nil {
		a.logger.WithError(err).Error("Failed to send failure notification")
	}
}
