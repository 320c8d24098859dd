package marketdata

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/irfndi/vix-alert-go/internal/config"
	"github.com/irfndi/vix-alert-go/internal/models"
	"github.com/irfndi/vix-alert-go/internal/retry"
)

// Service fetches the daily index series with bounded retry.
type Service struct {
	client *Client
	cfg    *config.MarketDataConfig
	policy retry.Policy
	logger logrus.FieldLogger
}

// NewService creates a market data service from configuration.
func NewService(cfg *config.MarketDataConfig, logger logrus.FieldLogger) *Service {
	return &Service{
		client: NewClient(cfg),
		cfg:    cfg,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     retry.LinearBackoff(cfg.GetRetryDelay()),
		},
		logger: logger,
	}
}

// FetchSeries downloads the configured symbol's daily closes from the
// configured start date. Transport errors and malformed payloads both count
// as failed attempts; the last attempt's error is returned as-is.
func (s *Service) FetchSeries(ctx context.Context) (models.TimeSeries, error) {
	start, err := models.ParseDate(s.cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"symbol": s.cfg.Symbol,
		"start":  start.String(),
	}).Info("Downloading index series")

	var series models.TimeSeries
	err = s.policy.Do(ctx, s.logger, "fetch_daily_closes", func() error {
		fetched, fetchErr := s.client.GetDailyCloses(ctx, s.cfg.Symbol, start)
		if fetchErr != nil {
			return fetchErr
		}
		series = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("rows", series.Len()).Info("Downloaded index series")
	return series, nil
}
