package summary

import v1 "github.com/logistics-lab/palletbook/internal/api/v1"

// distributorDimension maintains DistributorSummary keyed by distributor id.
type distributorDimension struct{}

func (distributorDimension) Name() string { return "distributor" }

func (distributorDimension) Apply(s *MonthlySummary, r *v1.WorkRecord) {
	entry, ok := s.DistributorSummary[r.DistributorID]
	if !ok {
		entry = DistributorEntry{
			DailyBreakdown: make(map[string]int),
			ItemBreakdown:  make(map[string]int),
			NameRecords:    make(map[string]int),
		}
	}
	entry.NameRecords = seedCounts(entry.NameRecords, entry.Name, entry.RecordCount)
	entry.TotalPallets += r.TotalPallets
	entry.RecordCount++
	addCount(entry.NameRecords, r.DistributorName, 1)
	entry.Name = dominantName(entry.NameRecords)
	addCount(entry.DailyBreakdown, r.WorkDate.String(), r.TotalPallets)
	for _, item := range r.Items {
		addCount(entry.ItemBreakdown, item.ItemName, item.Quantity)
	}
	s.DistributorSummary[r.DistributorID] = entry
}

func (distributorDimension) Retract(s *MonthlySummary, r *v1.WorkRecord) {
	entry, ok := s.DistributorSummary[r.DistributorID]
	if !ok {
		return
	}
	entry.NameRecords = seedCounts(entry.NameRecords, entry.Name, entry.RecordCount)
	entry.TotalPallets = floorSub(entry.TotalPallets, r.TotalPallets)
	entry.RecordCount = floorSub(entry.RecordCount, 1)
	addCount(entry.NameRecords, r.DistributorName, -1)
	entry.Name = dominantName(entry.NameRecords)
	addCount(entry.DailyBreakdown, r.WorkDate.String(), -r.TotalPallets)
	for _, item := range r.Items {
		addCount(entry.ItemBreakdown, item.ItemName, -item.Quantity)
	}
	if entry.RecordCount == 0 {
		delete(s.DistributorSummary, r.DistributorID)
		return
	}
	s.DistributorSummary[r.DistributorID] = entry
}

// itemDimension maintains ItemSummary keyed by item name.
// An item's category is the one most of its lines carry.
type itemDimension struct{}

func (itemDimension) Name() string { return "item" }

func (itemDimension) Apply(s *MonthlySummary, r *v1.WorkRecord) {
	for _, item := range r.Items {
		entry, ok := s.ItemSummary[item.ItemName]
		if !ok {
			entry = ItemEntry{
				DistributorBreakdown: make(map[string]int),
				CategoryLines:        make(map[string]int),
			}
		}
		entry.CategoryLines = seedCounts(entry.CategoryLines, entry.Category, entry.LineCount)
		entry.TotalPallets += item.Quantity
		entry.LineCount++
		addCount(entry.CategoryLines, item.Category, 1)
		entry.Category = dominantName(entry.CategoryLines)
		addCount(entry.DistributorBreakdown, r.DistributorName, item.Quantity)
		s.ItemSummary[item.ItemName] = entry
	}
}

func (itemDimension) Retract(s *MonthlySummary, r *v1.WorkRecord) {
	for i := len(r.Items) - 1; i >= 0; i-- {
		item := r.Items[i]
		entry, ok := s.ItemSummary[item.ItemName]
		if !ok {
			continue
		}
		entry.CategoryLines = seedCounts(entry.CategoryLines, entry.Category, entry.LineCount)
		entry.TotalPallets = floorSub(entry.TotalPallets, item.Quantity)
		entry.LineCount = floorSub(entry.LineCount, 1)
		addCount(entry.CategoryLines, item.Category, -1)
		entry.Category = dominantName(entry.CategoryLines)
		addCount(entry.DistributorBreakdown, r.DistributorName, -item.Quantity)
		if entry.LineCount == 0 {
			delete(s.ItemSummary, item.ItemName)
			continue
		}
		s.ItemSummary[item.ItemName] = entry
	}
}

// dailyDimension maintains DailySummary keyed by work date.
type dailyDimension struct{}

func (dailyDimension) Name() string { return "daily" }

func (dailyDimension) Apply(s *MonthlySummary, r *v1.WorkRecord) {
	day := r.WorkDate.String()
	entry, ok := s.DailySummary[day]
	if !ok {
		entry = DailyEntry{
			TopDistributors:    []string{},
			DistributorRecords: make(map[string]int),
		}
	}
	entry.TotalPallets += r.TotalPallets
	entry.RecordCount++
	entry.TopDistributors = admitName(entry.TopDistributors, entry.DistributorRecords, r.DistributorName, MaxDailyDistributors)
	s.DailySummary[day] = entry
}

func (dailyDimension) Retract(s *MonthlySummary, r *v1.WorkRecord) {
	day := r.WorkDate.String()
	entry, ok := s.DailySummary[day]
	if !ok {
		return
	}
	entry.TotalPallets = floorSub(entry.TotalPallets, r.TotalPallets)
	entry.RecordCount = floorSub(entry.RecordCount, 1)
	entry.TopDistributors = releaseName(entry.TopDistributors, entry.DistributorRecords, r.DistributorName, MaxDailyDistributors)
	if entry.RecordCount == 0 {
		delete(s.DailySummary, day)
		return
	}
	s.DailySummary[day] = entry
}

// categoryDimension maintains CategorySummary from lines that carry a category.
type categoryDimension struct{}

func (categoryDimension) Name() string { return "category" }

func (categoryDimension) Apply(s *MonthlySummary, r *v1.WorkRecord) {
	for _, item := range r.Items {
		if item.Category == "" {
			continue
		}
		entry, ok := s.CategorySummary[item.Category]
		if !ok {
			entry = CategoryEntry{
				TopItems:         []string{},
				ItemLines:        make(map[string]int),
				DistributorLines: make(map[string]int),
			}
		}
		entry.TotalPallets += item.Quantity
		entry.LineCount++
		entry.TopItems = admitName(entry.TopItems, entry.ItemLines, item.ItemName, MaxCategoryItems)
		entry.DistributorLines[r.DistributorName]++
		entry.DistributorCount = len(entry.DistributorLines)
		s.CategorySummary[item.Category] = entry
	}
}

func (categoryDimension) Retract(s *MonthlySummary, r *v1.WorkRecord) {
	for i := len(r.Items) - 1; i >= 0; i-- {
		item := r.Items[i]
		if item.Category == "" {
			continue
		}
		entry, ok := s.CategorySummary[item.Category]
		if !ok {
			continue
		}
		entry.TotalPallets = floorSub(entry.TotalPallets, item.Quantity)
		entry.LineCount = floorSub(entry.LineCount, 1)
		entry.TopItems = releaseName(entry.TopItems, entry.ItemLines, item.ItemName, MaxCategoryItems)
		addCount(entry.DistributorLines, r.DistributorName, -1)
		entry.DistributorCount = len(entry.DistributorLines)
		if entry.LineCount == 0 {
			delete(s.CategorySummary, item.Category)
			continue
		}
		s.CategorySummary[item.Category] = entry
	}
}
