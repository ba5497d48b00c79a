package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	"github.com/robfig/cron/v3"
)

// PendingSource reads the current pending collection.
type PendingSource interface {
	LoadPending(ctx context.Context) ([]payout.PayoutRequest, error)
}

// PendingSampler resets the pending gauge from storage on a cron schedule,
// correcting drift from writes made by other processes.
type PendingSampler struct {
	source  PendingSource
	metrics *PayoutMetrics
	logger  *slog.Logger
	timeout time.Duration
	cron    *cron.Cron
}

func NewPendingSampler(source PendingSource, metrics *PayoutMetrics, logger *slog.Logger) *PendingSampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PendingSampler{
		source:  source,
		metrics: metrics,
		logger:  logger,
		timeout: 5 * time.Second,
		cron:    cron.New(),
	}
}

func (s *PendingSampler) Sample(ctx context.Context) error {
	pending, err := s.source.LoadPending(ctx)
	if err != nil {
		return fmt.Errorf("sample pending requests: %w", err)
	}
	s.metrics.PendingRequests.Set(float64(len(pending)))
	return nil
}

// Start samples once and then on schedule, e.g. "@every 30s".
func (s *PendingSampler) Start(ctx context.Context, schedule string) error {
	if err := s.Sample(ctx); err != nil {
		s.logger.Warn("initial pending sample failed", "error", err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Sample(ctx); err != nil {
			s.logger.Warn("pending sample failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule pending sampler %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info("pending sampler started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sample to finish.
func (s *PendingSampler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("pending sampler stopped")
}
