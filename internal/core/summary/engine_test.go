package summary

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func march(day int) v1.Date {
	return v1.Date{Year: 2024, Month: time.March, Day: day}
}

func newRecord(id, distID, distName string, pallets int, date v1.Date, items ...v1.WorkItem) *v1.WorkRecord {
	return &v1.WorkRecord{
		ID:              id,
		CompanyID:       "C1",
		DistributorID:   distID,
		DistributorName: distName,
		TotalPallets:    pallets,
		Items:           items,
		WorkDate:        date,
		WorkTime:        date.Time().Add(9 * time.Hour),
		Status:          v1.StatusCompleted,
	}
}

func item(name string, qty int, category string) v1.WorkItem {
	return v1.WorkItem{ItemName: name, Quantity: qty, Unit: v1.UnitPallet, Category: category}
}

func mustApply(t *testing.T, s *MonthlySummary, r *v1.WorkRecord) *MonthlySummary {
	t.Helper()
	next, err := Apply(s, r)
	require.NoError(t, err)
	require.NoError(t, CheckInvariants(next))
	return next
}

func mustRetract(t *testing.T, s *MonthlySummary, r *v1.WorkRecord) *MonthlySummary {
	t.Helper()
	next, err := Retract(s, r)
	require.NoError(t, err)
	require.NoError(t, CheckInvariants(next))
	return next
}

func TestApply_FirstRecordScenario(t *testing.T) {
	s := NewMonthlySummary("C1", 2024, 3)
	r := newRecord("r1", "D1", "Lotte", 50, march(1), item("Apple", 30, "Fruit"))

	got := mustApply(t, s, r)

	require.Equal(t, "C1_2024_03", got.ID)
	require.Equal(t, 50, got.TotalPallets)
	require.Equal(t, 1, got.TotalRecords)
	require.Equal(t, 1, got.TotalDistributors)

	d1 := got.DistributorSummary["D1"]
	require.Equal(t, "Lotte", d1.Name)
	require.Equal(t, 50, d1.TotalPallets)
	require.Equal(t, 1, d1.RecordCount)
	require.Equal(t, map[string]int{"2024-03-01": 50}, d1.DailyBreakdown)
	require.Equal(t, map[string]int{"Apple": 30}, d1.ItemBreakdown)

	day := got.DailySummary["2024-03-01"]
	require.Equal(t, 50, day.TotalPallets)
	require.Equal(t, 1, day.RecordCount)
	require.Equal(t, []string{"Lotte"}, day.TopDistributors)

	apple := got.ItemSummary["Apple"]
	require.Equal(t, 30, apple.TotalPallets)
	require.Equal(t, "Fruit", apple.Category)
	require.Equal(t, map[string]int{"Lotte": 30}, apple.DistributorBreakdown)

	fruit := got.CategorySummary["Fruit"]
	require.Equal(t, 30, fruit.TotalPallets)
	require.Equal(t, 1, fruit.DistributorCount)
	require.Equal(t, []string{"Apple"}, fruit.TopItems)

	// input untouched
	require.Equal(t, 0, s.TotalPallets)
	require.Empty(t, s.DistributorSummary)
}

func TestApply_SecondRecordSameDay(t *testing.T) {
	s := mustApply(t, nil, newRecord("r1", "D1", "Lotte", 50, march(1), item("Apple", 30, "Fruit")))
	got := mustApply(t, s, newRecord("r2", "D1", "Lotte", 20, march(1)))

	require.Equal(t, 70, got.TotalPallets)
	require.Equal(t, 2, got.TotalRecords)
	require.Equal(t, 1, got.TotalDistributors)
	require.Equal(t, 2, got.DailySummary["2024-03-01"].RecordCount)
	require.Equal(t, 70, got.DailySummary["2024-03-01"].TotalPallets)
	require.Equal(t, []string{"Lotte"}, got.DailySummary["2024-03-01"].TopDistributors)
	require.Equal(t, 70, got.DistributorSummary["D1"].DailyBreakdown["2024-03-01"])
	require.Equal(t, 30, got.ItemSummary["Apple"].TotalPallets)
}

func TestApply_AbsentBucketEqualsZeroSummary(t *testing.T) {
	r := newRecord("r1", "D1", "Lotte", 12, march(5), item("Pear", 4, "Fruit"), item("Milk", 8, "Dairy"))

	fromNil, err := Apply(nil, r)
	require.NoError(t, err)
	fromZero, err := Apply(NewMonthlySummary("C1", 2024, 3), r)
	require.NoError(t, err)

	require.Equal(t, fromZero, fromNil)
}

func TestApply_BucketMismatch(t *testing.T) {
	april := NewMonthlySummary("C1", 2024, 4)
	_, err := Apply(april, newRecord("r1", "D1", "Lotte", 1, march(1)))
	require.ErrorIs(t, err, ErrBucketMismatch)

	other := NewMonthlySummary("C2", 2024, 3)
	_, err = Retract(other, newRecord("r1", "D1", "Lotte", 1, march(1)))
	require.ErrorIs(t, err, ErrBucketMismatch)

	_, err = Apply(nil, nil)
	require.Error(t, err)
}

func TestRetract_UndoesApply(t *testing.T) {
	base, err := Fold("C1", 2024, 3, []*v1.WorkRecord{
		newRecord("a", "D1", "Lotte", 10, march(1), item("Apple", 6, "Fruit")),
		newRecord("b", "D2", "Emart", 7, march(1), item("Apple", 3, "Fruit"), item("Milk", 4, "Dairy")),
		newRecord("c", "D1", "Lotte", 5, march(2)),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		record *v1.WorkRecord
	}{
		{name: "new distributor", record: newRecord("x", "D3", "Costco", 9, march(3), item("Kiwi", 9, "Fruit"))},
		{name: "existing distributor same day", record: newRecord("x", "D1", "Lotte", 4, march(1), item("Apple", 2, "Fruit"))},
		{name: "item without category", record: newRecord("x", "D2", "Emart", 3, march(2), item("Box", 3, ""))},
		{name: "repeated item lines", record: newRecord("x", "D2", "Emart", 6, march(4), item("Milk", 2, "Dairy"), item("Milk", 2, "Dairy"))},
		{name: "zero quantity line", record: newRecord("x", "D4", "Kurly", 1, march(1), item("Apple", 0, "Fruit"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			applied := mustApply(t, base, tc.record)
			restored := mustRetract(t, applied, tc.record)
			require.Equal(t, base, restored)
		})
	}

	t.Run("from zero", func(t *testing.T) {
		zero := NewMonthlySummary("C1", 2024, 3)
		r := newRecord("z", "D1", "Lotte", 50, march(1), item("Apple", 30, "Fruit"))
		require.Equal(t, zero, mustRetract(t, mustApply(t, zero, r), r))
	})
}

func TestRetract_ZeroSummaryNeverNegative(t *testing.T) {
	zero := NewMonthlySummary("C1", 2024, 3)
	r := newRecord("r1", "D1", "Lotte", 50, march(1), item("Apple", 30, "Fruit"))

	got := mustRetract(t, zero, r)
	require.Equal(t, zero, got)

	// duplicate retraction after the only record is gone
	s := mustApply(t, zero, r)
	s = mustRetract(t, s, r)
	s = mustRetract(t, s, r)
	require.Equal(t, 0, s.TotalPallets)
	require.Equal(t, 0, s.TotalRecords)
	require.Equal(t, 0, s.TotalDistributors)
}

func TestDailyTopDistributors_BoundedFirstSeen(t *testing.T) {
	names := []string{"Lotte", "Emart", "Costco", "Homeplus", "Kurly", "Coupang", "Aldi"}
	records := make([]*v1.WorkRecord, 0, len(names))
	s := NewMonthlySummary("C1", 2024, 3)
	for i, name := range names {
		r := newRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("D%d", i), name, 1, march(10))
		records = append(records, r)
		s = mustApply(t, s, r)
	}

	day := s.DailySummary["2024-03-10"]
	require.Equal(t, []string{"Lotte", "Emart", "Costco", "Homeplus", "Kurly"}, day.TopDistributors)
	require.Len(t, day.DistributorRecords, 7)

	// removing a listed distributor refills from the unlisted ones in name order
	s = mustRetract(t, s, records[1])
	require.Equal(t, []string{"Lotte", "Costco", "Homeplus", "Kurly", "Aldi"}, s.DailySummary["2024-03-10"].TopDistributors)

	// removing an unlisted distributor leaves the list alone
	s = mustRetract(t, s, records[5])
	require.Equal(t, []string{"Lotte", "Costco", "Homeplus", "Kurly", "Aldi"}, s.DailySummary["2024-03-10"].TopDistributors)
}

func TestCategoryTopItems_BoundedNoDuplicates(t *testing.T) {
	s := NewMonthlySummary("C1", 2024, 3)
	for i := 0; i < 12; i++ {
		r := newRecord(fmt.Sprintf("r%d", i), "D1", "Lotte", 2, march(1),
			item(fmt.Sprintf("item-%02d", i), 1, "Fruit"),
			item(fmt.Sprintf("item-%02d", i), 1, "Fruit"),
		)
		s = mustApply(t, s, r)
	}

	fruit := s.CategorySummary["Fruit"]
	require.Len(t, fruit.TopItems, MaxCategoryItems)
	require.Equal(t, "item-00", fruit.TopItems[0])
	require.Equal(t, "item-09", fruit.TopItems[9])
	require.Equal(t, 24, fruit.LineCount)
	require.Equal(t, 24, fruit.TotalPallets)
	require.Equal(t, 1, fruit.DistributorCount)
}

func TestApplyRetract_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	itemNames := []string{"Apple", "Pear", "Milk", "Cheese", "Rice", "Flour", "Kiwi", "Yogurt"}
	categories := map[string]string{
		"Apple": "Fruit", "Pear": "Fruit", "Kiwi": "Fruit",
		"Milk": "Dairy", "Cheese": "Dairy", "Yogurt": "Dairy",
		"Rice": "Grain", "Flour": "",
	}

	zero := NewMonthlySummary("C1", 2024, 3)
	s := zero
	var records []*v1.WorkRecord
	for i := 0; i < 150; i++ {
		dist := rng.Intn(9)
		var items []v1.WorkItem
		for j := rng.Intn(4); j > 0; j-- {
			name := itemNames[rng.Intn(len(itemNames))]
			items = append(items, item(name, rng.Intn(5), categories[name]))
		}
		r := newRecord(fmt.Sprintf("r%03d", i), fmt.Sprintf("D%d", dist), fmt.Sprintf("Dist-%d", dist),
			1+rng.Intn(40), march(1+rng.Intn(28)), items...)
		records = append(records, r)
		s = mustApply(t, s, r)
	}

	rebuilt, err := Fold("C1", 2024, 3, records)
	require.NoError(t, err)
	require.Equal(t, s, rebuilt)

	rng.Shuffle(len(records), func(i, j int) { records[i], records[j] = records[j], records[i] })
	for _, r := range records {
		s = mustRetract(t, s, r)
	}
	require.Equal(t, zero, s)
}

func TestEqualCounters_IgnoresListOrder(t *testing.T) {
	a := mustApply(t, nil, newRecord("r1", "D1", "Lotte", 1, march(1)))
	a = mustApply(t, a, newRecord("r2", "D2", "Emart", 1, march(1)))

	b := mustApply(t, nil, newRecord("r2", "D2", "Emart", 1, march(1)))
	b = mustApply(t, b, newRecord("r1", "D1", "Lotte", 1, march(1)))
	b.LastUpdated = time.Now()

	require.NotEqual(t, a.DailySummary["2024-03-01"].TopDistributors, b.DailySummary["2024-03-01"].TopDistributors)
	require.True(t, EqualCounters(a, b))

	c := mustApply(t, b, newRecord("r3", "D2", "Emart", 1, march(2)))
	require.False(t, EqualCounters(a, c))
}

func TestCheckInvariants_ReportsDrift(t *testing.T) {
	s := mustApply(t, nil, newRecord("r1", "D1", "Lotte", 10, march(1)))
	s.TotalPallets = 11
	s.TotalDistributors = 3

	err := CheckInvariants(s)
	require.Error(t, err)

	var invErr *InvariantError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "C1_2024_03", invErr.Key)
	require.GreaterOrEqual(t, len(invErr.Violations), 3)
}

func TestTopDistributorsAndItems(t *testing.T) {
	s, err := Fold("C1", 2024, 3, []*v1.WorkRecord{
		newRecord("a", "D1", "Lotte", 10, march(1), item("Apple", 5, "Fruit")),
		newRecord("b", "D2", "Emart", 30, march(1), item("Milk", 5, "Dairy"), item("Rice", 20, "Grain")),
		newRecord("c", "D3", "Aldi", 10, march(2)),
	})
	require.NoError(t, err)

	top := TopDistributors(s, 2)
	require.Len(t, top, 2)
	require.Equal(t, "Emart", top[0].Name)
	require.Equal(t, "Aldi", top[1].Name)
	require.Equal(t, "D3", top[1].ID)

	items := TopItems(s, 0)
	require.Equal(t, []string{"Rice", "Apple", "Milk"}, []string{items[0].Name, items[1].Name, items[2].Name})
	require.Empty(t, TopItems(nil, 3))
}

func TestRetract_FirstContributorOfNameAndCategory(t *testing.T) {
	first := newRecord("r1", "D1", "Lotte", 10, march(1), item("Apple", 6, "Fruit"))
	second := newRecord("r2", "D1", "Lotte Mart", 8, march(2), item("Apple", 5, "Veg"))

	s := mustApply(t, nil, first)
	s = mustApply(t, s, second)
	s = mustRetract(t, s, first)

	want, err := Fold("C1", 2024, 3, []*v1.WorkRecord{second})
	require.NoError(t, err)

	require.Equal(t, "Lotte Mart", s.DistributorSummary["D1"].Name)
	require.Equal(t, "Veg", s.ItemSummary["Apple"].Category)
	require.True(t, EqualCounters(want, s))
}

func TestDominantName_IndependentOfOrder(t *testing.T) {
	records := []*v1.WorkRecord{
		newRecord("r1", "D1", "Lotte", 1, march(1), item("Apple", 1, "Fruit")),
		newRecord("r2", "D1", "Lotte Mart", 1, march(1), item("Apple", 1, "Veg")),
		newRecord("r3", "D1", "Lotte Mart", 1, march(2), item("Apple", 1, "")),
	}
	forward, err := Fold("C1", 2024, 3, records)
	require.NoError(t, err)
	backward, err := Fold("C1", 2024, 3, []*v1.WorkRecord{records[2], records[1], records[0]})
	require.NoError(t, err)

	require.Equal(t, "Lotte Mart", forward.DistributorSummary["D1"].Name)
	require.Equal(t, "Fruit", forward.ItemSummary["Apple"].Category, "ties go to the smaller name, empty never wins")
	require.True(t, EqualCounters(forward, backward))
}

func TestApply_SeedsCountsOfOlderDocuments(t *testing.T) {
	s := mustApply(t, nil, newRecord("r1", "D1", "Lotte", 10, march(1), item("Apple", 6, "Fruit")))
	d := s.DistributorSummary["D1"]
	d.NameRecords = nil
	s.DistributorSummary["D1"] = d
	it := s.ItemSummary["Apple"]
	it.CategoryLines = nil
	s.ItemSummary["Apple"] = it
	require.Error(t, CheckInvariants(s))

	s = mustApply(t, s, newRecord("r2", "D1", "Lotte Mart", 5, march(2), item("Apple", 2, "Veg")))
	require.Equal(t, map[string]int{"Lotte": 1, "Lotte Mart": 1}, s.DistributorSummary["D1"].NameRecords)
	require.Equal(t, "Lotte", s.DistributorSummary["D1"].Name)
	require.Equal(t, map[string]int{"Fruit": 1, "Veg": 1}, s.ItemSummary["Apple"].CategoryLines)
}
