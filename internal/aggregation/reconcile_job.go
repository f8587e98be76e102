package aggregation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkerCount = 4
	defaultMonthsBack  = 1
)

// JobParameter controls the window and parallelism of one reconcile sweep.
type JobParameter struct {
	WorkerCount int

	// MonthsBack is how many months before the current one are swept.
	MonthsBack int
}

// DefaultJobParameter returns the current and previous month with four workers.
func DefaultJobParameter() JobParameter {
	return JobParameter{
		WorkerCount: defaultWorkerCount,
		MonthsBack:  defaultMonthsBack,
	}
}

func (o JobParameter) normalized() JobParameter {
	n := o
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	if n.MonthsBack < 0 {
		n.MonthsBack = 0
	}
	return n
}

// SweepResult summarizes one reconcile sweep.
type SweepResult struct {
	Buckets  int
	Repaired int
	Failed   int
}

// Window returns the first day of the oldest swept month and the day of now.
func (o JobParameter) Window(now time.Time) (v1.Date, v1.Date) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month()-time.Month(o.normalized().MonthsBack), 1, 0, 0, 0, 0, time.UTC)
	return v1.DateOf(first), v1.DateOf(now)
}

// RunReconcile rebuilds every bucket in the sweep window and rewrites the ones
// whose stored summary drifted from its records. Each bucket is checked in its
// own transaction; a failed bucket does not stop the others. The returned error
// is the first bucket failure, if any.
func RunReconcile(ctx context.Context, store ReconcileStore, params JobParameter, now time.Time) (SweepResult, error) {
	params = params.normalized()
	from, to := params.Window(now)

	buckets, err := store.ListBuckets(ctx, from, to)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list buckets: %w", err)
	}

	logger.Debug(ctx, "[Reconciler] Starting sweep",
		"from", from.String(),
		"to", to.String(),
		"buckets", len(buckets),
		"workers", params.WorkerCount)

	var repaired, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(params.WorkerCount)

	for _, b := range buckets {
		g.Go(func() error {
			var res RebuildResult
			err := store.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
				var err error
				res, err = RebuildBucket(ctx, tx, b, now, false)
				return err
			})
			if err != nil {
				failed.Add(1)
				logger.Error(ctx, "[Reconciler] Bucket check failed", "bucket", b.Key(), "error", err)
				return fmt.Errorf("bucket %s: %w", b.Key(), err)
			}
			if res.Written {
				repaired.Add(1)
				logger.Warn(ctx, "[Reconciler] Repaired drifted summary",
					"bucket", b.Key(),
					"records", res.Records,
					"total_pallets", res.Summary.TotalPallets)
			}
			return nil
		})
	}

	err = g.Wait()
	result := SweepResult{
		Buckets:  len(buckets),
		Repaired: int(repaired.Load()),
		Failed:   int(failed.Load()),
	}
	return result, err
}
