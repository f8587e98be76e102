package summary

import (
	"errors"
	"fmt"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
)

// ErrBucketMismatch is returned when a record is folded into a summary of another bucket.
var ErrBucketMismatch = errors.New("record does not belong to summary bucket")

// Dimension folds one breakdown of a record into a summary.
// To add a breakdown: implement Dimension and register it in Dimensions.
// Retract must exactly undo Apply for the same record.
type Dimension interface {
	Name() string
	Apply(s *MonthlySummary, r *v1.WorkRecord)
	Retract(s *MonthlySummary, r *v1.WorkRecord)
}

// Dimensions is the ordered registry of breakdowns maintained on every summary.
var Dimensions = []Dimension{
	distributorDimension{},
	itemDimension{},
	dailyDimension{},
	categoryDimension{},
}

// Apply returns a new summary with r's contribution added. s is not modified.
// A nil s is treated as the zero summary of r's bucket.
func Apply(s *MonthlySummary, r *v1.WorkRecord) (*MonthlySummary, error) {
	next, err := prepare(s, r)
	if err != nil {
		return nil, err
	}

	next.TotalPallets += r.TotalPallets
	next.TotalRecords++
	for _, dim := range Dimensions {
		dim.Apply(next, r)
	}
	next.TotalDistributors = len(next.DistributorSummary)
	return next, nil
}

// Retract returns a new summary with r's contribution removed. s is not modified.
// Retracting a record the summary holds no distributor entry for is a no-op, so a
// duplicate or out-of-order retraction cannot drive counters negative.
func Retract(s *MonthlySummary, r *v1.WorkRecord) (*MonthlySummary, error) {
	next, err := prepare(s, r)
	if err != nil {
		return nil, err
	}

	if _, ok := next.DistributorSummary[r.DistributorID]; !ok {
		return next, nil
	}

	next.TotalPallets = floorSub(next.TotalPallets, r.TotalPallets)
	next.TotalRecords = floorSub(next.TotalRecords, 1)
	for i := len(Dimensions) - 1; i >= 0; i-- {
		Dimensions[i].Retract(next, r)
	}
	next.TotalDistributors = len(next.DistributorSummary)
	return next, nil
}

// Fold builds a summary from scratch by applying records in order.
func Fold(companyID string, year, month int, records []*v1.WorkRecord) (*MonthlySummary, error) {
	s := NewMonthlySummary(companyID, year, month)
	for _, r := range records {
		next, err := Apply(s, r)
		if err != nil {
			return nil, fmt.Errorf("fold record %s: %w", r.ID, err)
		}
		s = next
	}
	return s, nil
}

// BucketOf returns the (year, month) bucket of a record.
func BucketOf(r *v1.WorkRecord) (int, int) {
	return r.WorkDate.Year, int(r.WorkDate.Month)
}

func prepare(s *MonthlySummary, r *v1.WorkRecord) (*MonthlySummary, error) {
	if r == nil {
		return nil, fmt.Errorf("nil work record")
	}
	year, month := BucketOf(r)
	if s == nil {
		return NewMonthlySummary(r.CompanyID, year, month), nil
	}
	if s.CompanyID != r.CompanyID || s.Year != year || s.Month != month {
		return nil, fmt.Errorf("%w: record %s is %s, summary is %s",
			ErrBucketMismatch, r.ID, Key(r.CompanyID, year, month), s.Key())
	}
	return s.Clone(), nil
}
