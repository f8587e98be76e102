package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/summary"
)

// Postgres SQLSTATEs that mean "run the transaction again".
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// isRetryable reports whether err is a serialization failure or deadlock.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	}
	return false
}

// insertRecordArgs matches the column order of recordColumns.
func insertRecordArgs(r *v1.WorkRecord) []interface{} {
	return []interface{}{
		r.ID,
		r.CompanyID,
		r.UserID,
		r.DistributorID,
		r.DistributorName,
		r.TotalPallets,
		r.Items,
		r.WorkDate,
		r.WorkTime,
		string(r.Status),
		r.Notes,
		r.CreatedAt,
		r.UpdatedAt,
		r.CreatedBy,
		r.CreatedByName,
		r.UpdatedBy,
	}
}

func updateRecordArgs(r *v1.WorkRecord) []interface{} {
	return []interface{}{
		r.CompanyID,
		r.ID,
		r.UserID,
		r.DistributorID,
		r.DistributorName,
		r.TotalPallets,
		r.Items,
		r.WorkDate,
		r.WorkTime,
		string(r.Status),
		r.Notes,
		r.UpdatedAt,
		r.UpdatedBy,
	}
}

func marshalSummary(s *summary.MonthlySummary) ([]byte, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary %s: %w", s.Key(), err)
	}
	return doc, nil
}

func unmarshalSummary(doc []byte) (*summary.MonthlySummary, error) {
	var s summary.MonthlySummary
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	// A document stored with null maps must still accept writes.
	if s.DistributorSummary == nil {
		s.DistributorSummary = make(map[string]summary.DistributorEntry)
	}
	if s.ItemSummary == nil {
		s.ItemSummary = make(map[string]summary.ItemEntry)
	}
	if s.DailySummary == nil {
		s.DailySummary = make(map[string]summary.DailyEntry)
	}
	if s.CategorySummary == nil {
		s.CategorySummary = make(map[string]summary.CategoryEntry)
	}
	return &s, nil
}

// monthBounds returns the first and last calendar day of a month.
func monthBounds(year, month int) (v1.Date, v1.Date) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return v1.DateOf(first), v1.DateOf(last)
}
