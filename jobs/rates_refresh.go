package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/financehub/financehub/internal/jobs"
	"github.com/financehub/financehub/internal/rates"
)

// RateRefresher fetches and stores today's official rate.
type RateRefresher interface {
	Refresh(ctx context.Context) (rates.Rate, error)
}

// RatesRefreshJob keeps the rate table current.
type RatesRefreshJob struct {
	Rates   RateRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRatesRefreshJob wires the refresh handler.
func NewRatesRefreshJob(refresher RateRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *RatesRefreshJob {
	return &RatesRefreshJob{Rates: refresher, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRatesRefresh tasks. Invalid quotes are not retried.
func (j *RatesRefreshJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Rates == nil {
		return errors.New("rates refresh: handler not configured")
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := metrics.Track(TaskRatesRefresh)

	rate, err := j.Rates.Refresh(ctx)
	if err != nil {
		logger.Error("refresh official rate", slog.Any("error", err))
		err = tracker.End(err)
		if errors.Is(err, rates.ErrInvalidRate) {
			return errors.Join(err, asynq.SkipRetry)
		}
		return err
	}
	logger.Info("official rate refreshed", slog.String("date", rate.Date), slog.Float64("rate", rate.Value))
	return tracker.End(nil)
}
