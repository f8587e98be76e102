package aggregation

import (
	"context"
	"time"

	"github.com/logistics-lab/palletbook/pkg/logger"
)

// SweepObserver receives the outcome of each sweep. *metrics.Metrics satisfies it.
type SweepObserver interface {
	ObserveReconcile(buckets, repairs int, err error)
}

// Scheduler runs reconcile sweeps on a periodic interval.
// It is stateless: each tick independently re-derives the buckets to check.
type Scheduler struct {
	interval time.Duration
	store    ReconcileStore
	opts     JobParameter
	observer SweepObserver
	now      func() time.Time
}

// NewScheduler creates a reconciler. observer may be nil.
func NewScheduler(interval time.Duration, store ReconcileStore, opts JobParameter, observer SweepObserver) *Scheduler {
	return &Scheduler{
		interval: interval,
		store:    store,
		opts:     opts.normalized(),
		observer: observer,
		now:      time.Now,
	}
}

// Start begins periodic reconciliation.
// Runs until context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info(ctx, "[Scheduler] Starting summary reconciler",
		"interval", s.interval.String(),
		"months_back", s.opts.MonthsBack,
		"workers", s.opts.WorkerCount)

	// Catch drift left behind while the process was down.
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			logger.Info(context.Background(), "[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

// sweep runs one reconcile pass and reports it.
func (s *Scheduler) sweep(ctx context.Context) SweepResult {
	start := time.Now()
	result, err := RunReconcile(ctx, s.store, s.opts, s.now())
	if s.observer != nil {
		s.observer.ObserveReconcile(result.Buckets, result.Repaired, err)
	}

	if err != nil {
		if ctx.Err() != nil {
			logger.Info(context.Background(), "[Scheduler] Sweep interrupted by context cancellation",
				"buckets", result.Buckets)
			return result
		}
		logger.Error(ctx, "[Scheduler] Reconcile sweep failed",
			"error", err,
			"buckets", result.Buckets,
			"failed", result.Failed)
		return result
	}

	if result.Repaired > 0 {
		logger.Warn(ctx, "[Scheduler] Reconcile sweep repaired summaries",
			"buckets", result.Buckets,
			"repaired", result.Repaired,
			"elapsed_ms", time.Since(start).Milliseconds())
		return result
	}
	logger.Debug(ctx, "[Scheduler] Reconcile sweep clean",
		"buckets", result.Buckets,
		"elapsed_ms", time.Since(start).Milliseconds())
	return result
}
