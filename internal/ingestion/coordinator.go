package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/aggregation"
	"github.com/logistics-lab/palletbook/internal/catalog"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/summary"
	"github.com/logistics-lab/palletbook/internal/core/validation"
	"github.com/logistics-lab/palletbook/internal/metrics"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

// Mutation names used in logs and metrics.
const (
	opCreate  = "create"
	opUpdate  = "update"
	opDelete  = "delete"
	opRebuild = "rebuild"
)

// Author identifies who performed a mutation.
type Author struct {
	ID   string
	Name string
}

// Create stores a new record and applies it to the summary of its month.
// A record without an id gets a fresh UUIDv7; a client-supplied id that
// already exists fails with storage.ErrDuplicate.
func (s *Service) Create(ctx context.Context, in *v1.WorkRecord, author Author) (out *v1.WorkRecord, err error) {
	start := time.Now()
	defer func() { s.observe(opCreate, start, err) }()

	rec := in.Clone()
	rec.ApplyDefaults()
	if err := s.check(ctx, rec); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		if rec.ID, err = s.newID(); err != nil {
			return nil, fmt.Errorf("generate record id: %w", err)
		}
	}
	now := s.now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.CreatedBy = author.ID
	rec.CreatedByName = author.Name
	rec.UpdatedBy = author.ID
	if rec.UserID == "" {
		rec.UserID = author.ID
	}
	if rec.WorkTime.IsZero() {
		rec.WorkTime = now
	}

	year, month := summary.BucketOf(rec)
	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		doc, err := loadSummary(ctx, tx, rec.CompanyID, year, month, now)
		if err != nil {
			return err
		}
		next, err := summary.Apply(doc, rec)
		if err != nil {
			return err
		}
		next.LastUpdated = now

		if err := tx.InsertRecord(ctx, rec); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
		return tx.PutSummary(ctx, next)
	})
	if err != nil {
		logger.Warn(ctx, "[Ingestion] Create failed",
			"company_id", rec.CompanyID,
			"record_id", rec.ID,
			"error", err)
		return nil, fmt.Errorf("create record: %w", err)
	}

	logger.Info(ctx, "[Ingestion] Record created",
		"company_id", rec.CompanyID,
		"record_id", rec.ID,
		"bucket", summary.Key(rec.CompanyID, year, month),
		"total_pallets", rec.TotalPallets)
	return rec, nil
}

// Update replaces a record, retracting the stored version from its month and
// applying the new version to its month. When the work date moves to another
// month both summaries are written in the same transaction.
func (s *Service) Update(ctx context.Context, companyID, id string, in *v1.WorkRecord, author Author) (out *v1.WorkRecord, err error) {
	start := time.Now()
	defer func() { s.observe(opUpdate, start, err) }()

	rec := in.Clone()
	rec.ApplyDefaults()
	rec.CompanyID = companyID
	rec.ID = id
	if err := s.check(ctx, rec); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var fromDate, toDate string
	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		prior, err := tx.GetRecord(ctx, companyID, id)
		if err != nil {
			return fmt.Errorf("read record %s: %w", id, err)
		}

		rec.CreatedAt = prior.CreatedAt
		rec.CreatedBy = prior.CreatedBy
		rec.CreatedByName = prior.CreatedByName
		rec.UpdatedAt = now
		rec.UpdatedBy = author.ID
		if rec.UserID == "" {
			rec.UserID = prior.UserID
		}
		if rec.WorkTime.IsZero() {
			rec.WorkTime = prior.WorkTime
		}

		docs, err := moveContribution(ctx, tx, prior, rec, now)
		if err != nil {
			return err
		}
		fromDate, toDate = prior.WorkDate.String(), rec.WorkDate.String()

		if err := tx.UpdateRecord(ctx, rec); err != nil {
			return fmt.Errorf("update record %s: %w", id, err)
		}
		for _, doc := range docs {
			if err := tx.PutSummary(ctx, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "[Ingestion] Update failed",
			"company_id", companyID,
			"record_id", id,
			"error", err)
		return nil, fmt.Errorf("update record: %w", err)
	}

	logger.Info(ctx, "[Ingestion] Record updated",
		"company_id", companyID,
		"record_id", id,
		"from_date", fromDate,
		"to_date", toDate)
	return rec, nil
}

// moveContribution retracts prior and applies next. The returned documents
// are ordered by bucket key so concurrent moves lock in the same order.
func moveContribution(ctx context.Context, tx storage.Tx, prior, next *v1.WorkRecord, now time.Time) ([]*summary.MonthlySummary, error) {
	py, pm := summary.BucketOf(prior)
	ny, nm := summary.BucketOf(next)

	if py == ny && pm == nm {
		doc, err := loadSummary(ctx, tx, next.CompanyID, ny, nm, now)
		if err != nil {
			return nil, err
		}
		if doc, err = summary.Retract(doc, prior); err != nil {
			return nil, err
		}
		if doc, err = summary.Apply(doc, next); err != nil {
			return nil, err
		}
		doc.LastUpdated = now
		return []*summary.MonthlySummary{doc}, nil
	}

	type side struct {
		year, month int
		apply       func(*summary.MonthlySummary) (*summary.MonthlySummary, error)
	}
	sides := []side{
		{py, pm, func(doc *summary.MonthlySummary) (*summary.MonthlySummary, error) { return summary.Retract(doc, prior) }},
		{ny, nm, func(doc *summary.MonthlySummary) (*summary.MonthlySummary, error) { return summary.Apply(doc, next) }},
	}
	if summary.Key(next.CompanyID, ny, nm) < summary.Key(next.CompanyID, py, pm) {
		sides[0], sides[1] = sides[1], sides[0]
	}

	docs := make([]*summary.MonthlySummary, 0, len(sides))
	for _, sd := range sides {
		doc, err := loadSummary(ctx, tx, next.CompanyID, sd.year, sd.month, now)
		if err != nil {
			return nil, err
		}
		if doc, err = sd.apply(doc); err != nil {
			return nil, err
		}
		doc.LastUpdated = now
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes a record and retracts it from the summary of its month.
func (s *Service) Delete(ctx context.Context, companyID, id string) (err error) {
	start := time.Now()
	defer func() { s.observe(opDelete, start, err) }()

	now := s.now().UTC()
	var bucket string
	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		prior, err := tx.GetRecord(ctx, companyID, id)
		if err != nil {
			return fmt.Errorf("read record %s: %w", id, err)
		}

		year, month := summary.BucketOf(prior)
		bucket = summary.Key(companyID, year, month)
		doc, err := loadSummary(ctx, tx, companyID, year, month, now)
		if err != nil {
			return err
		}
		next, err := summary.Retract(doc, prior)
		if err != nil {
			return err
		}
		next.LastUpdated = now

		if err := tx.DeleteRecord(ctx, companyID, id); err != nil {
			return fmt.Errorf("delete record %s: %w", id, err)
		}
		return tx.PutSummary(ctx, next)
	})
	if err != nil {
		logger.Warn(ctx, "[Ingestion] Delete failed",
			"company_id", companyID,
			"record_id", id,
			"error", err)
		return fmt.Errorf("delete record: %w", err)
	}

	logger.Info(ctx, "[Ingestion] Record deleted",
		"company_id", companyID,
		"record_id", id,
		"bucket", bucket)
	return nil
}

// Rebuild recomputes a monthly summary from its records and overwrites the
// stored document.
func (s *Service) Rebuild(ctx context.Context, companyID string, year, month int) (out *summary.MonthlySummary, err error) {
	start := time.Now()
	defer func() { s.observe(opRebuild, start, err) }()

	if companyID == "" {
		return nil, &validation.Error{Field: "company_id", Reason: "is required"}
	}
	if month < 1 || month > 12 {
		return nil, &validation.Error{Field: "month", Reason: "must be between 1 and 12"}
	}

	now := s.now().UTC()
	b := storage.Bucket{CompanyID: companyID, Year: year, Month: month}
	var res aggregation.RebuildResult
	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		res, err = aggregation.RebuildBucket(ctx, tx, b, now, true)
		return err
	})
	if err != nil {
		logger.Warn(ctx, "[Ingestion] Rebuild failed", "bucket", b.Key(), "error", err)
		return nil, fmt.Errorf("rebuild summary: %w", err)
	}

	logger.Info(ctx, "[Ingestion] Summary rebuilt",
		"bucket", b.Key(),
		"records", res.Records,
		"drifted", res.Drifted)
	return res.Summary, nil
}

// check validates a record and resolves its distributor against the catalog,
// stamping the catalog name on it.
func (s *Service) check(ctx context.Context, rec *v1.WorkRecord) error {
	if err := s.validator.Validate(rec); err != nil {
		return err
	}
	if s.resolver == nil {
		return nil
	}

	d, err := s.resolver.Resolve(ctx, rec.DistributorID)
	switch {
	case errors.Is(err, catalog.ErrUnknownDistributor), errors.Is(err, catalog.ErrInactiveDistributor):
		return &validation.Error{Field: "distributor_id", Reason: err.Error()}
	case err != nil:
		return fmt.Errorf("resolve distributor: %w", err)
	}
	// the catalog owns the name; a client copy is only a hint
	rec.DistributorName = d.Name
	return nil
}

// loadSummary reads a bucket's summary for update, or a zero one stamped now.
func loadSummary(ctx context.Context, tx storage.Tx, companyID string, year, month int, now time.Time) (*summary.MonthlySummary, error) {
	doc, err := tx.GetSummary(ctx, companyID, year, month)
	if errors.Is(err, storage.ErrNotFound) {
		doc = summary.NewMonthlySummary(companyID, year, month)
		doc.CreatedAt = now
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read summary %s: %w", summary.Key(companyID, year, month), err)
	}
	return doc, nil
}

func (s *Service) observe(op string, start time.Time, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveMutation(op, outcome(err), time.Since(start))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, validation.ErrInvalid):
		return metrics.OutcomeInvalid
	case errors.Is(err, storage.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrDuplicate):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
