package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/storage"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	recordColumnList = []string{
		"id", "company_id", "user_id", "distributor_id", "distributor_name",
		"total_pallets", "items", "work_date", "work_time", "status", "notes",
		"created_at", "updated_at", "created_by", "created_by_name", "updated_by",
	}

	orderClauses = map[storage.RecordOrder][]string{
		storage.OrderByWorkDate: {"work_date DESC", "work_time DESC", "id DESC"},
		storage.OrderByWorkTime: {"work_time DESC", "id DESC"},
	}
)

// buildRecordQuery turns a filter into SQL. company_id is always bound first.
func buildRecordQuery(filter storage.RecordFilter) (string, []interface{}, error) {
	q := psql.Select(recordColumnList...).
		From("work_records").
		Where(sq.Eq{"company_id": filter.CompanyID})

	if filter.DistributorID != "" {
		q = q.Where(sq.Eq{"distributor_id": filter.DistributorID})
	}
	if !filter.From.IsZero() {
		q = q.Where(sq.GtOrEq{"work_date": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(sq.LtOrEq{"work_date": filter.To})
	}

	order, ok := orderClauses[filter.Order]
	if !ok {
		order = orderClauses[storage.OrderByWorkDate]
	}
	q = q.OrderBy(order...)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q.ToSql()
}

// QueryRecords runs a filtered, ordered record query.
func (a *Adapter) QueryRecords(ctx context.Context, filter storage.RecordFilter) ([]*v1.WorkRecord, error) {
	query, args, err := buildRecordQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build record query: %w", err)
	}

	records := make([]*v1.WorkRecord, 0)
	if err := sqlscan.Select(ctx, a.db, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return records, nil
}

type bucketRow struct {
	CompanyID string `db:"company_id"`
	Year      int    `db:"year"`
	Month     int    `db:"month"`
}

// ListBuckets returns every bucket with records or a stored summary whose month
// lies between the months of from and to.
func (a *Adapter) ListBuckets(ctx context.Context, from, to v1.Date) ([]storage.Bucket, error) {
	first, _ := monthBounds(from.Year, int(from.Month))
	_, last := monthBounds(to.Year, int(to.Month))

	var rows []bucketRow
	if err := sqlscan.Select(ctx, a.db, &rows, queryListBuckets,
		first,
		last,
		storage.MonthIndex(from.Year, int(from.Month)),
		storage.MonthIndex(to.Year, int(to.Month)),
	); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	buckets := make([]storage.Bucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, storage.Bucket{CompanyID: row.CompanyID, Year: row.Year, Month: row.Month})
	}
	return buckets, nil
}
