package aggregation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/summary"
)

// RebuildResult describes one bucket after RebuildBucket.
type RebuildResult struct {
	Bucket  storage.Bucket
	Summary *summary.MonthlySummary
	Records int

	// Drifted is set when the stored document was missing while records exist,
	// disagreed with the fold of the records, or broke an invariant.
	Drifted bool

	// Written is set when the fold replaced the stored document.
	Written bool
}

// RebuildBucket folds every record of a bucket from the zero summary and
// compares the result with the stored document. The fold is written when force
// is set or the stored document drifted. It must run inside tx so the records
// and the document are read from the same snapshot.
func RebuildBucket(ctx context.Context, tx storage.Tx, b storage.Bucket, now time.Time, force bool) (RebuildResult, error) {
	res := RebuildResult{Bucket: b}

	records, err := tx.ListMonthRecords(ctx, b.CompanyID, b.Year, b.Month)
	if err != nil {
		return res, fmt.Errorf("list records of %s: %w", b.Key(), err)
	}
	res.Records = len(records)

	fresh, err := summary.Fold(b.CompanyID, b.Year, b.Month, records)
	if err != nil {
		return res, fmt.Errorf("fold %s: %w", b.Key(), err)
	}

	stored, err := tx.GetSummary(ctx, b.CompanyID, b.Year, b.Month)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		stored = nil
	case err != nil:
		return res, fmt.Errorf("read summary %s: %w", b.Key(), err)
	}

	res.Drifted = drifted(stored, fresh)
	if !force && !res.Drifted {
		res.Summary = stored
		if stored == nil {
			res.Summary = fresh
		}
		return res, nil
	}

	fresh.CreatedAt = now
	if stored != nil && !stored.CreatedAt.IsZero() {
		fresh.CreatedAt = stored.CreatedAt
	}
	fresh.LastUpdated = now
	if err := tx.PutSummary(ctx, fresh); err != nil {
		return res, fmt.Errorf("write summary %s: %w", b.Key(), err)
	}

	res.Summary = fresh
	res.Written = true
	return res, nil
}

func drifted(stored, fresh *summary.MonthlySummary) bool {
	if stored == nil {
		return fresh.TotalRecords > 0
	}
	if !summary.EqualCounters(stored, fresh) {
		return true
	}
	return summary.CheckInvariants(stored) != nil
}
