package summary

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// InvariantError lists every invariant a summary violates.
type InvariantError struct {
	Key        string
	Violations []string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("summary %s violates invariants: %s", e.Key, strings.Join(e.Violations, "; "))
}

// CheckInvariants verifies the scalar totals against the breakdowns and the
// bounded lists against their contributor counts.
func CheckInvariants(s *MonthlySummary) error {
	if s == nil {
		return fmt.Errorf("nil summary")
	}
	var violations []string
	report := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	var distPallets, distRecords int
	for id, d := range s.DistributorSummary {
		distPallets += d.TotalPallets
		distRecords += d.RecordCount
		if d.RecordCount <= 0 {
			report("distributor %s has record_count %d", id, d.RecordCount)
		}
		if sumCounts(d.NameRecords) != d.RecordCount {
			report("distributor %s name records sum to %d, want %d", id, sumCounts(d.NameRecords), d.RecordCount)
		}
		if want := dominantName(d.NameRecords); d.Name != want {
			report("distributor %s name %q, want %q", id, d.Name, want)
		}
		if sumCounts(d.DailyBreakdown) != d.TotalPallets {
			report("distributor %s daily breakdown sums to %d, want %d", id, sumCounts(d.DailyBreakdown), d.TotalPallets)
		}
	}
	if s.TotalPallets != distPallets {
		report("total_pallets %d != distributor sum %d", s.TotalPallets, distPallets)
	}
	if s.TotalRecords != distRecords {
		report("total_records %d != distributor record sum %d", s.TotalRecords, distRecords)
	}
	if s.TotalDistributors != len(s.DistributorSummary) {
		report("total_distributors %d != %d distributor entries", s.TotalDistributors, len(s.DistributorSummary))
	}

	var dayPallets, dayRecords int
	for day, d := range s.DailySummary {
		dayPallets += d.TotalPallets
		dayRecords += d.RecordCount
		if sumCounts(d.DistributorRecords) != d.RecordCount {
			report("day %s distributor records sum to %d, want %d", day, sumCounts(d.DistributorRecords), d.RecordCount)
		}
		if msg := checkBoundedList(d.TopDistributors, d.DistributorRecords, MaxDailyDistributors); msg != "" {
			report("day %s top_distributors %s", day, msg)
		}
	}
	if dayPallets != s.TotalPallets {
		report("daily pallets %d != total_pallets %d", dayPallets, s.TotalPallets)
	}
	if dayRecords != s.TotalRecords {
		report("daily records %d != total_records %d", dayRecords, s.TotalRecords)
	}

	for name, item := range s.ItemSummary {
		if sumCounts(item.DistributorBreakdown) != item.TotalPallets {
			report("item %s distributor breakdown sums to %d, want %d", name, sumCounts(item.DistributorBreakdown), item.TotalPallets)
		}
		if sumCounts(item.CategoryLines) != item.LineCount {
			report("item %s category lines sum to %d, want %d", name, sumCounts(item.CategoryLines), item.LineCount)
		}
		if want := dominantName(item.CategoryLines); item.Category != want {
			report("item %s category %q, want %q", name, item.Category, want)
		}
	}

	for name, c := range s.CategorySummary {
		if sumCounts(c.ItemLines) != c.LineCount {
			report("category %s item lines sum to %d, want %d", name, sumCounts(c.ItemLines), c.LineCount)
		}
		if c.DistributorCount != len(c.DistributorLines) {
			report("category %s distributor_count %d != %d", name, c.DistributorCount, len(c.DistributorLines))
		}
		if msg := checkBoundedList(c.TopItems, c.ItemLines, MaxCategoryItems); msg != "" {
			report("category %s top_items %s", name, msg)
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &InvariantError{Key: s.Key(), Violations: violations}
}

func checkBoundedList(list []string, contributors map[string]int, limit int) string {
	want := len(contributors)
	if want > limit {
		want = limit
	}
	if len(list) != want {
		return fmt.Sprintf("has %d names, want %d", len(list), want)
	}
	seen := make(map[string]bool, len(list))
	for _, name := range list {
		if seen[name] {
			return fmt.Sprintf("repeats %q", name)
		}
		seen[name] = true
		if contributors[name] <= 0 {
			return fmt.Sprintf("lists %q without contributors", name)
		}
	}
	return ""
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// EqualCounters reports whether a and b agree on every counter and breakdown.
// Bounded list order and membership are ignored since they depend on fold order,
// as are audit timestamps.
func EqualCounters(a, b *MonthlySummary) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(stripLists(a), stripLists(b))
}

func stripLists(s *MonthlySummary) *MonthlySummary {
	out := s.Clone()
	out.CreatedAt = time.Time{}
	out.LastUpdated = time.Time{}
	for k, d := range out.DailySummary {
		d.TopDistributors = nil
		out.DailySummary[k] = d
	}
	for k, c := range out.CategorySummary {
		c.TopItems = nil
		out.CategorySummary[k] = c
	}
	return out
}
