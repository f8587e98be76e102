package summary

import "sort"

// Ranked is one row of a ranking by pallets.
type Ranked struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	TotalPallets int    `json:"total_pallets"`
	RecordCount  int    `json:"record_count,omitempty"`
	Category     string `json:"category,omitempty"`
}

// TopDistributors ranks distributors by pallets descending, ties by name then id.
// n <= 0 returns all of them.
func TopDistributors(s *MonthlySummary, n int) []Ranked {
	if s == nil {
		return []Ranked{}
	}
	out := make([]Ranked, 0, len(s.DistributorSummary))
	for id, d := range s.DistributorSummary {
		out = append(out, Ranked{ID: id, Name: d.Name, TotalPallets: d.TotalPallets, RecordCount: d.RecordCount})
	}
	return truncateRanked(sortRanked(out), n)
}

// TopItems ranks items by summed quantity descending, ties by name.
func TopItems(s *MonthlySummary, n int) []Ranked {
	if s == nil {
		return []Ranked{}
	}
	out := make([]Ranked, 0, len(s.ItemSummary))
	for name, item := range s.ItemSummary {
		out = append(out, Ranked{Name: name, TotalPallets: item.TotalPallets, Category: item.Category})
	}
	return truncateRanked(sortRanked(out), n)
}

func sortRanked(rows []Ranked) []Ranked {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPallets != rows[j].TotalPallets {
			return rows[i].TotalPallets > rows[j].TotalPallets
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

func truncateRanked(rows []Ranked, n int) []Ranked {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
