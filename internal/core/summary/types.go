package summary

import (
	"fmt"
	"time"
)

// Bounded list sizes. Lists are first-seen-wins, not frequency-ranked.
const (
	MaxDailyDistributors = 5
	MaxCategoryItems     = 10
)

// Key returns the bucket key of a (company, year, month) summary.
// Example: Key("C1", 2024, 3) → "C1_2024_03"
func Key(companyID string, year, month int) string {
	return fmt.Sprintf("%s_%d_%02d", companyID, year, month)
}

// MonthlySummary is the denormalized aggregate of all work records of one company in one month.
type MonthlySummary struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`

	TotalPallets      int `json:"total_pallets"`
	TotalRecords      int `json:"total_records"`
	TotalDistributors int `json:"total_distributors"`

	DistributorSummary map[string]DistributorEntry `json:"distributor_summary"`
	ItemSummary        map[string]ItemEntry        `json:"item_summary"`
	DailySummary       map[string]DailyEntry       `json:"daily_summary"`
	CategorySummary    map[string]CategoryEntry    `json:"category_summary"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// DistributorEntry is keyed by distributor id.
type DistributorEntry struct {
	Name         string `json:"name"`
	TotalPallets int    `json:"total_pallets"`
	RecordCount  int    `json:"record_count"`
	// DailyBreakdown maps YYYY-MM-DD to pallets.
	DailyBreakdown map[string]int `json:"daily_breakdown"`
	// ItemBreakdown maps item name to quantity.
	ItemBreakdown map[string]int `json:"item_breakdown"`
	// NameRecords counts records per denormalized name and backs Name.
	NameRecords map[string]int `json:"name_records"`
}

// ItemEntry is keyed by item name. TotalPallets is the summed line quantity.
type ItemEntry struct {
	TotalPallets int    `json:"total_pallets"`
	Category     string `json:"category"`
	LineCount    int    `json:"line_count"`
	// DistributorBreakdown maps distributor name to quantity.
	DistributorBreakdown map[string]int `json:"distributor_breakdown"`
	// CategoryLines counts lines per category and backs Category.
	CategoryLines map[string]int `json:"category_lines"`
}

// DailyEntry is keyed by YYYY-MM-DD.
type DailyEntry struct {
	TotalPallets    int      `json:"total_pallets"`
	RecordCount     int      `json:"record_count"`
	TopDistributors []string `json:"top_distributors"`
	// DistributorRecords counts records per distributor name and backs TopDistributors.
	DistributorRecords map[string]int `json:"distributor_records"`
}

// CategoryEntry is keyed by category name.
type CategoryEntry struct {
	TotalPallets     int      `json:"total_pallets"`
	DistributorCount int      `json:"distributor_count"`
	LineCount        int      `json:"line_count"`
	TopItems         []string `json:"top_items"`
	// ItemLines counts lines per item name and backs TopItems.
	ItemLines map[string]int `json:"item_lines"`
	// DistributorLines counts lines per distributor name and backs DistributorCount.
	DistributorLines map[string]int `json:"distributor_lines"`
}

// NewMonthlySummary returns the zero-valued summary for a bucket.
func NewMonthlySummary(companyID string, year, month int) *MonthlySummary {
	return &MonthlySummary{
		ID:                 Key(companyID, year, month),
		CompanyID:          companyID,
		Year:               year,
		Month:              month,
		DistributorSummary: make(map[string]DistributorEntry),
		ItemSummary:        make(map[string]ItemEntry),
		DailySummary:       make(map[string]DailyEntry),
		CategorySummary:    make(map[string]CategoryEntry),
	}
}

// Key returns the bucket key of s.
func (s *MonthlySummary) Key() string {
	return Key(s.CompanyID, s.Year, s.Month)
}

// Clone returns a deep copy of s. A nil summary clones to nil.
func (s *MonthlySummary) Clone() *MonthlySummary {
	if s == nil {
		return nil
	}
	out := *s
	out.DistributorSummary = make(map[string]DistributorEntry, len(s.DistributorSummary))
	for k, v := range s.DistributorSummary {
		v.DailyBreakdown = cloneCounts(v.DailyBreakdown)
		v.ItemBreakdown = cloneCounts(v.ItemBreakdown)
		v.NameRecords = cloneCounts(v.NameRecords)
		out.DistributorSummary[k] = v
	}
	out.ItemSummary = make(map[string]ItemEntry, len(s.ItemSummary))
	for k, v := range s.ItemSummary {
		v.DistributorBreakdown = cloneCounts(v.DistributorBreakdown)
		v.CategoryLines = cloneCounts(v.CategoryLines)
		out.ItemSummary[k] = v
	}
	out.DailySummary = make(map[string]DailyEntry, len(s.DailySummary))
	for k, v := range s.DailySummary {
		v.TopDistributors = cloneNames(v.TopDistributors)
		v.DistributorRecords = cloneCounts(v.DistributorRecords)
		out.DailySummary[k] = v
	}
	out.CategorySummary = make(map[string]CategoryEntry, len(s.CategorySummary))
	for k, v := range s.CategorySummary {
		v.TopItems = cloneNames(v.TopItems)
		v.ItemLines = cloneCounts(v.ItemLines)
		v.DistributorLines = cloneCounts(v.DistributorLines)
		out.CategorySummary[k] = v
	}
	return &out
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
