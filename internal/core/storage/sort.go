package storage

import (
	"sort"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
)

// SortRecords sorts records in place for the given order. Ties fall back to id
// so results are stable across backends.
func SortRecords(records []*v1.WorkRecord, order RecordOrder) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if order == OrderByWorkDate && a.WorkDate != b.WorkDate {
			return a.WorkDate.After(b.WorkDate)
		}
		if !a.WorkTime.Equal(b.WorkTime) {
			return a.WorkTime.After(b.WorkTime)
		}
		return a.ID > b.ID
	})
}

// MonthIndex maps a (year, month) pair onto a single comparable integer.
func MonthIndex(year, month int) int {
	return year*12 + month - 1
}
