package storage

import (
	"context"
	"errors"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/summary"
)

var (
	// ErrNotFound is returned when a record or summary does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a record with the same (company_id, id) already exists.
	ErrDuplicate = errors.New("record already exists")

	// ErrConflict is returned when a transaction kept losing to concurrent writers
	// after the store exhausted its retries.
	ErrConflict = errors.New("transaction conflict")
)

// Tx is the view of the store inside one atomic unit of work.
// Reads lock what they return until the transaction ends.
type Tx interface {
	// GetSummary returns ErrNotFound for a bucket that was never written.
	GetSummary(ctx context.Context, companyID string, year, month int) (*summary.MonthlySummary, error)
	PutSummary(ctx context.Context, s *summary.MonthlySummary) error

	GetRecord(ctx context.Context, companyID, id string) (*v1.WorkRecord, error)
	InsertRecord(ctx context.Context, r *v1.WorkRecord) error
	UpdateRecord(ctx context.Context, r *v1.WorkRecord) error
	DeleteRecord(ctx context.Context, companyID, id string) error

	// ListMonthRecords returns every record of a bucket in creation order.
	ListMonthRecords(ctx context.Context, companyID string, year, month int) ([]*v1.WorkRecord, error)
}

// Transactor runs fn atomically. If fn returns an error nothing it wrote is kept.
// Implementations may run fn more than once when a write conflict is detected,
// so fn must not have side effects outside tx.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// RecordOrder selects the sort of a record query.
type RecordOrder int

const (
	// OrderByWorkDate sorts by work date desc, then work time desc.
	OrderByWorkDate RecordOrder = iota
	// OrderByWorkTime sorts by work time desc.
	OrderByWorkTime
)

// RecordFilter scopes a record query. Zero-valued fields do not filter.
type RecordFilter struct {
	CompanyID     string
	DistributorID string
	From          v1.Date // inclusive
	To            v1.Date // inclusive
	Limit         int
	Order         RecordOrder
}

// RecordQuerier serves the read-only record queries.
type RecordQuerier interface {
	QueryRecords(ctx context.Context, filter RecordFilter) ([]*v1.WorkRecord, error)
	FindRecord(ctx context.Context, companyID, id string) (*v1.WorkRecord, error)
}

// SummaryReader reads committed summaries outside a transaction.
type SummaryReader interface {
	FindSummary(ctx context.Context, companyID string, year, month int) (*summary.MonthlySummary, error)
}

// Bucket identifies one monthly summary.
type Bucket struct {
	CompanyID string
	Year      int
	Month     int
}

func (b Bucket) Key() string {
	return summary.Key(b.CompanyID, b.Year, b.Month)
}

// BucketLister enumerates the buckets touched in a date window.
type BucketLister interface {
	// ListBuckets returns buckets that have records or a stored summary with
	// a month inside [from, to], ordered by key.
	ListBuckets(ctx context.Context, from, to v1.Date) ([]Bucket, error)
}

// Store is everything the service needs from a backend.
type Store interface {
	Transactor
	RecordQuerier
	SummaryReader
	BucketLister
	Ping(ctx context.Context) error
	Close() error
}
