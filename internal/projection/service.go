package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/summary"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDistributorLimit = 50
	DefaultRecentLimit      = 10
	MaxLimit                = 500

	dashboardRecent = 10
	dashboardTop    = 5
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid query")

// Service implements the read side: record queries, summaries and the views
// derived from them. Every read is scoped by company.
type Service struct {
	records   storage.RecordQuerier
	summaries storage.SummaryReader
	nowFn     func() time.Time

	// collapses concurrent reads of the same bucket
	sf singleflight.Group
}

// NewService creates a new projection service.
func NewService(records storage.RecordQuerier, summaries storage.SummaryReader) *Service {
	return &Service{
		records:   records,
		summaries: summaries,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// RecordsByDate returns the records of one work date.
func (s *Service) RecordsByDate(ctx context.Context, companyID string, date v1.Date) (*RecordList, error) {
	if date.IsZero() {
		return nil, invalidQueryf("date is required")
	}
	return s.query(ctx, storage.RecordFilter{CompanyID: companyID, From: date, To: date})
}

// RecordsInRange returns the records with from <= work date <= to.
func (s *Service) RecordsInRange(ctx context.Context, companyID string, from, to v1.Date) (*RecordList, error) {
	if from.IsZero() || to.IsZero() {
		return nil, invalidQueryf("from and to are required")
	}
	if from.After(to) {
		return nil, invalidQueryf("from %s is after to %s", from, to)
	}
	return s.query(ctx, storage.RecordFilter{CompanyID: companyID, From: from, To: to})
}

// RecordsByDistributor returns up to limit records of one distributor,
// newest work date first.
func (s *Service) RecordsByDistributor(ctx context.Context, companyID, distributorID string, limit int) (*RecordList, error) {
	if distributorID == "" {
		return nil, invalidQueryf("distributor_id is required")
	}
	limit, err := normalizeLimit(limit, DefaultDistributorLimit)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, storage.RecordFilter{CompanyID: companyID, DistributorID: distributorID, Limit: limit})
}

// RecentRecords returns the limit most recent records by work timestamp.
func (s *Service) RecentRecords(ctx context.Context, companyID string, limit int) (*RecordList, error) {
	limit, err := normalizeLimit(limit, DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, storage.RecordFilter{CompanyID: companyID, Limit: limit, Order: storage.OrderByWorkTime})
}

// GetRecord returns one record. A record of another company is not found.
func (s *Service) GetRecord(ctx context.Context, companyID, id string) (*v1.WorkRecord, error) {
	if companyID == "" || id == "" {
		return nil, invalidQueryf("company_id and record_id are required")
	}
	r, err := s.records.FindRecord(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("find record %s: %w", id, err)
	}
	return r, nil
}

// MonthlySummary returns the aggregate document of a bucket. A bucket that
// was never written reads as a zero document.
func (s *Service) MonthlySummary(ctx context.Context, companyID string, year, month int) (*summary.MonthlySummary, error) {
	if companyID == "" {
		return nil, invalidQueryf("company_id is required")
	}
	if month < 1 || month > 12 {
		return nil, invalidQueryf("month %d out of range", month)
	}
	if year < 1 {
		return nil, invalidQueryf("year %d out of range", year)
	}

	key := summary.Key(companyID, year, month)
	// The flight outlives the caller that started it; every caller waits on
	// its own context.
	fctx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		doc, err := s.summaries.FindSummary(fctx, companyID, year, month)
		if errors.Is(err, storage.ErrNotFound) {
			return summary.NewMonthlySummary(companyID, year, month), nil
		}
		if err != nil {
			return nil, fmt.Errorf("find summary %s: %w", key, err)
		}
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// shared between callers of the same flight
		return res.Val.(*summary.MonthlySummary).Clone(), nil
	}
}

// MonthlyReport expands a monthly summary into full rankings, a daily series
// covering every day of the month and category shares.
func (s *Service) MonthlyReport(ctx context.Context, companyID string, year, month int) (*MonthlyReport, error) {
	doc, err := s.MonthlySummary(ctx, companyID, year, month)
	if err != nil {
		return nil, err
	}
	return &MonthlyReport{
		Summary:                 doc,
		TopDistributors:         summary.TopDistributors(doc, 0),
		TopItems:                summary.TopItems(doc, 0),
		Daily:                   rollupDaily(doc),
		Categories:              rollupCategories(doc),
		AveragePalletsPerRecord: averagePerRecord(doc.TotalPallets, doc.TotalRecords),
	}, nil
}

// Dashboard assembles the landing view for one day. A zero date means today.
func (s *Service) Dashboard(ctx context.Context, companyID string, date v1.Date) (*Dashboard, error) {
	if companyID == "" {
		return nil, invalidQueryf("company_id is required")
	}
	if date.IsZero() {
		date = v1.DateOf(s.nowFn())
	}

	var (
		today  []*v1.WorkRecord
		recent []*v1.WorkRecord
		doc    *summary.MonthlySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		today, err = s.records.QueryRecords(gctx, storage.RecordFilter{CompanyID: companyID, From: date, To: date})
		if err != nil {
			return fmt.Errorf("query records of %s: %w", date, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.records.QueryRecords(gctx, storage.RecordFilter{
			CompanyID: companyID,
			Limit:     dashboardRecent,
			Order:     storage.OrderByWorkTime,
		})
		if err != nil {
			return fmt.Errorf("query recent records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		doc, err = s.MonthlySummary(gctx, companyID, date.Year, int(date.Month))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		CompanyID: companyID,
		Date:      date,
		Today:     totalsOf(today),
		Month: MonthTotals{
			Year:               doc.Year,
			Month:              doc.Month,
			TotalPallets:       doc.TotalPallets,
			TotalRecords:       doc.TotalRecords,
			ActiveDistributors: len(doc.DistributorSummary),
		},
		RecentRecords:           recent,
		TopDistributors:         summary.TopDistributors(doc, dashboardTop),
		TopItems:                summary.TopItems(doc, dashboardTop),
		AveragePalletsPerRecord: averagePerRecord(doc.TotalPallets, doc.TotalRecords),
	}, nil
}

func (s *Service) query(ctx context.Context, filter storage.RecordFilter) (*RecordList, error) {
	if filter.CompanyID == "" {
		return nil, invalidQueryf("company_id is required")
	}
	records, err := s.records.QueryRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	if records == nil {
		records = []*v1.WorkRecord{}
	}
	return &RecordList{CompanyID: filter.CompanyID, Count: len(records), Records: records}, nil
}

func normalizeLimit(limit, fallback int) (int, error) {
	switch {
	case limit < 0:
		return 0, invalidQueryf("limit must not be negative")
	case limit == 0:
		return fallback, nil
	case limit > MaxLimit:
		return MaxLimit, nil
	}
	return limit, nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
