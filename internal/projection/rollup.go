package projection

import (
	"sort"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/summary"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// rollupDaily expands a summary's daily map into one point per calendar day
// of the month, oldest first. Days without records are zero.
func rollupDaily(doc *summary.MonthlySummary) []DailyPoint {
	first := time.Date(doc.Year, time.Month(doc.Month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	points := make([]DailyPoint, 0, days)
	for d := 1; d <= days; d++ {
		key := v1.Date{Year: doc.Year, Month: first.Month(), Day: d}.String()
		entry := doc.DailySummary[key]
		points = append(points, DailyPoint{
			Date:         key,
			TotalPallets: entry.TotalPallets,
			RecordCount:  entry.RecordCount,
		})
	}
	return points
}

// rollupCategories orders categories by pallets descending, ties by name, and
// attaches each one's share of the pallets carried by categorized lines.
func rollupCategories(doc *summary.MonthlySummary) []CategoryShare {
	var total int
	for _, c := range doc.CategorySummary {
		total += c.TotalPallets
	}

	shares := make([]CategoryShare, 0, len(doc.CategorySummary))
	for name, c := range doc.CategorySummary {
		top := make([]string, len(c.TopItems))
		copy(top, c.TopItems)
		shares = append(shares, CategoryShare{
			Category:         name,
			TotalPallets:     c.TotalPallets,
			LineCount:        c.LineCount,
			DistributorCount: c.DistributorCount,
			TopItems:         top,
			SharePercent:     percentOf(c.TotalPallets, total),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].TotalPallets != shares[j].TotalPallets {
			return shares[i].TotalPallets > shares[j].TotalPallets
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// percentOf returns part/total as a percentage rounded to 2 places.
func percentOf(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}

// averagePerRecord returns pallets/records rounded to 2 places.
func averagePerRecord(pallets, records int) decimal.Decimal {
	if records <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(pallets)).DivRound(decimal.NewFromInt(int64(records)), 2)
}

// totalsOf sums a day's records.
func totalsOf(records []*v1.WorkRecord) DayTotals {
	var t DayTotals
	for _, r := range records {
		t.TotalPallets += r.TotalPallets
		t.RecordCount++
	}
	return t
}
