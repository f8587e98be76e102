package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/catalog"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/storage/memory"
	"github.com/logistics-lab/palletbook/internal/core/summary"
	"github.com/logistics-lab/palletbook/internal/core/validation"
	"github.com/logistics-lab/palletbook/internal/metrics"
	storagemocks "github.com/logistics-lab/palletbook/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)
	kim     = Author{ID: "u1", Name: "Kim"}
)

func newTestService(t *testing.T, store storage.Transactor, opts Options) *Service {
	t.Helper()
	val, err := validation.New(validation.Options{
		ItemSumPolicy:          validation.PolicyNotExceed,
		RequirePositivePallets: true,
	})
	require.NoError(t, err)

	svc := NewService(store, val, opts)
	svc.now = func() time.Time { return testNow }
	seq := 0
	svc.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("rec-%03d", seq), nil
	}
	return svc
}

func lotteRecord(date string, pallets int, items ...v1.WorkItem) *v1.WorkRecord {
	d, err := v1.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return &v1.WorkRecord{
		CompanyID:       "C1",
		DistributorID:   "D1",
		DistributorName: "Lotte",
		TotalPallets:    pallets,
		Items:           items,
		WorkDate:        d,
	}
}

func apple(qty int) v1.WorkItem {
	return v1.WorkItem{ItemName: "Apple", Quantity: qty, Category: "Fruit"}
}

func findSummary(t *testing.T, store *memory.Store, year, month int) *summary.MonthlySummary {
	t.Helper()
	doc, err := store.FindSummary(context.Background(), "C1", year, month)
	require.NoError(t, err)
	return doc
}

func TestCreate_AppliesToMonthlySummary(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{})
	ctx := context.Background()

	first, err := svc.Create(ctx, lotteRecord("2024-03-01", 50, apple(30)), kim)
	require.NoError(t, err)
	require.Equal(t, "rec-001", first.ID)
	require.Equal(t, v1.StatusCompleted, first.Status)
	require.Equal(t, v1.UnitPallet, first.Items[0].Unit)
	require.Equal(t, testNow, first.CreatedAt)
	require.Equal(t, "u1", first.CreatedBy)
	require.Equal(t, "Kim", first.CreatedByName)
	require.Equal(t, "u1", first.UserID)
	require.Equal(t, testNow, first.WorkTime)

	doc := findSummary(t, store, 2024, 3)
	require.Equal(t, 50, doc.TotalPallets)
	require.Equal(t, 1, doc.TotalRecords)
	require.Equal(t, 1, doc.TotalDistributors)
	require.Equal(t, 50, doc.DistributorSummary["D1"].TotalPallets)
	require.Equal(t, 50, doc.DailySummary["2024-03-01"].TotalPallets)
	require.Equal(t, 30, doc.ItemSummary["Apple"].TotalPallets)
	require.Equal(t, testNow, doc.CreatedAt)

	_, err = svc.Create(ctx, lotteRecord("2024-03-01", 20), kim)
	require.NoError(t, err)

	doc = findSummary(t, store, 2024, 3)
	require.Equal(t, 70, doc.TotalPallets)
	require.Equal(t, 2, doc.TotalRecords)
	require.Equal(t, 2, doc.DailySummary["2024-03-01"].RecordCount)
	require.NoError(t, summary.CheckInvariants(doc))

	stored, err := store.FindRecord(ctx, "C1", "rec-001")
	require.NoError(t, err)
	require.Equal(t, 50, stored.TotalPallets)
}

func TestCreate_ClientIDIsKeptAndDuplicatesRejected(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{})
	ctx := context.Background()

	rec := lotteRecord("2024-03-01", 10)
	rec.ID = "client-1"
	created, err := svc.Create(ctx, rec, kim)
	require.NoError(t, err)
	require.Equal(t, "client-1", created.ID)

	_, err = svc.Create(ctx, rec, kim)
	require.ErrorIs(t, err, storage.ErrDuplicate)

	doc := findSummary(t, store, 2024, 3)
	require.Equal(t, 10, doc.TotalPallets)
	require.Equal(t, 1, doc.TotalRecords)
}

func TestCreate_InvalidRecordNeverReachesStore(t *testing.T) {
	tests := []struct {
		name  string
		rec   *v1.WorkRecord
		field string
	}{
		{name: "missing distributor", rec: &v1.WorkRecord{CompanyID: "C1", TotalPallets: 1, WorkDate: v1.Date{Year: 2024, Month: 3, Day: 1}}, field: "distributor_id"},
		{name: "zero pallets", rec: lotteRecord("2024-03-01", 0), field: "total_pallets"},
		{name: "items exceed total", rec: lotteRecord("2024-03-01", 10, apple(11)), field: "items"},
		{name: "missing work date", rec: &v1.WorkRecord{CompanyID: "C1", DistributorID: "D1", TotalPallets: 1}, field: "work_date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// No expectations: any store call fails the test.
			store := storagemocks.NewTransactor(t)
			svc := newTestService(t, store, Options{})

			_, err := svc.Create(context.Background(), tc.rec, kim)
			require.ErrorIs(t, err, validation.ErrInvalid)

			var verr *validation.Error
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreate_ResolvesDistributorFromCatalog(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{Resolver: stubResolver{
		"D1": {ID: "D1", Name: "Lotte Mart", Active: true},
	}})
	ctx := context.Background()

	rec := lotteRecord("2024-03-01", 10)
	rec.DistributorName = ""
	created, err := svc.Create(ctx, rec, kim)
	require.NoError(t, err)
	require.Equal(t, "Lotte Mart", created.DistributorName)
	require.Equal(t, "Lotte Mart", findSummary(t, store, 2024, 3).DistributorSummary["D1"].Name)

	unknown := lotteRecord("2024-03-01", 10)
	unknown.DistributorID = "D9"
	_, err = svc.Create(ctx, unknown, kim)
	require.ErrorIs(t, err, validation.ErrInvalid)
	require.ErrorContains(t, err, "distributor not found")
}

func TestCreateAndUpdate_CatalogNameWins(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{Resolver: stubResolver{
		"D1": {ID: "D1", Name: "Lotte Mart", Active: true},
	}})
	ctx := context.Background()

	rec := lotteRecord("2024-03-01", 10)
	rec.DistributorName = "Lotte"
	created, err := svc.Create(ctx, rec, kim)
	require.NoError(t, err)
	require.Equal(t, "Lotte Mart", created.DistributorName)

	changed := lotteRecord("2024-03-02", 12)
	changed.DistributorName = "LOTTE (old)"
	updated, err := svc.Update(ctx, "C1", created.ID, changed, Author{ID: "u2"})
	require.NoError(t, err)
	require.Equal(t, "Lotte Mart", updated.DistributorName)

	stored, err := store.FindRecord(ctx, "C1", created.ID)
	require.NoError(t, err)
	require.Equal(t, "Lotte Mart", stored.DistributorName)

	doc := findSummary(t, store, 2024, 3)
	require.Equal(t, "Lotte Mart", doc.DistributorSummary["D1"].Name)
	require.Equal(t, map[string]int{"Lotte Mart": 1}, doc.DistributorSummary["D1"].NameRecords)
	require.Equal(t, []string{"Lotte Mart"}, doc.DailySummary["2024-03-02"].TopDistributors)
}

func TestUpdate_SameMonth(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{})
	ctx := context.Background()

	created, err := svc.Create(ctx, lotteRecord("2024-03-01", 50, apple(30)), kim)
	require.NoError(t, err)

	changed := lotteRecord("2024-03-05", 40, apple(40))
	changed.DistributorID = "D2"
	changed.DistributorName = "Costco"
	updated, err := svc.Update(ctx, "C1", created.ID, changed, Author{ID: "u2"})
	require.NoError(t, err)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, "u1", updated.CreatedBy)
	require.Equal(t, "u2", updated.UpdatedBy)
	require.Equal(t, created.WorkTime, updated.WorkTime)

	doc := findSummary(t, store, 2024, 3)
	require.Equal(t, 40, doc.TotalPallets)
	require.Equal(t, 1, doc.TotalRecords)
	require.NotContains(t, doc.DistributorSummary, "D1")
	require.NotContains(t, doc.DailySummary, "2024-03-01")
	require.Equal(t, 40, doc.DailySummary["2024-03-05"].TotalPallets)
	require.Equal(t, []string{"Costco"}, doc.DailySummary["2024-03-05"].TopDistributors)
	require.Equal(t, 40, doc.ItemSummary["Apple"].TotalPallets)
	require.NoError(t, summary.CheckInvariants(doc))
}

func TestUpdate_MovesContributionAcrossMonths(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{})
	ctx := context.Background()

	_, err := svc.Create(ctx, lotteRecord("2024-03-02", 20), kim)
	require.NoError(t, err)
	moving, err := svc.Create(ctx, lotteRecord("2024-03-31", 50, apple(30)), kim)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "C1", moving.ID, lotteRecord("2024-04-01", 50, apple(30)), kim)
	require.NoError(t, err)

	march := findSummary(t, store, 2024, 3)
	require.Equal(t, 20, march.TotalPallets)
	require.Equal(t, 1, march.TotalRecords)
	require.NotContains(t, march.ItemSummary, "Apple")
	require.NotContains(t, march.DailySummary, "2024-03-31")

	april := findSummary(t, store, 2024, 4)
	require.Equal(t, 50, april.TotalPallets)
	require.Equal(t, 1, april.TotalRecords)
	require.Equal(t, 30, april.ItemSummary["Apple"].TotalPallets)
	require.Equal(t, testNow, april.CreatedAt)

	require.NoError(t, summary.CheckInvariants(march))
	require.NoError(t, summary.CheckInvariants(april))
}

func TestUpdate_MissingRecord(t *testing.T) {
	svc := newTestService(t, memory.NewStore(), Options{})

	_, err := svc.Update(context.Background(), "C1", "nope", lotteRecord("2024-03-01", 5), kim)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_RetractsEverything(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{})
	ctx := context.Background()

	created, err := svc.Create(ctx, lotteRecord("2024-03-01", 50, apple(30)), kim)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "C1", created.ID))

	doc := findSummary(t, store, 2024, 3)
	require.Zero(t, doc.TotalPallets)
	require.Zero(t, doc.TotalRecords)
	require.Zero(t, doc.TotalDistributors)
	require.Empty(t, doc.DistributorSummary)
	require.Empty(t, doc.ItemSummary)
	require.Empty(t, doc.DailySummary)
	require.Empty(t, doc.CategorySummary)

	_, err = store.FindRecord(ctx, "C1", created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "C1", created.ID), storage.ErrNotFound)
}

func TestMutation_AbortedTransactionLeavesNoPartialState(t *testing.T) {
	mem := memory.NewStore()
	seedSvc := newTestService(t, mem, Options{})
	ctx := context.Background()
	created, err := seedSvc.Create(ctx, lotteRecord("2024-03-01", 50), kim)
	require.NoError(t, err)

	// The body runs against the real store, then the commit is refused.
	store := storagemocks.NewTransactor(t)
	store.EXPECT().
		RunInTransaction(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, fn func(context.Context, storage.Tx) error) error {
			return mem.RunInTransaction(ctx, func(ctx context.Context, tx storage.Tx) error {
				if err := fn(ctx, tx); err != nil {
					return err
				}
				return storage.ErrConflict
			})
		})

	svc := newTestService(t, store, Options{})

	_, err = svc.Update(ctx, "C1", created.ID, lotteRecord("2024-04-10", 5), kim)
	require.ErrorIs(t, err, storage.ErrConflict)
	require.ErrorIs(t, svc.Delete(ctx, "C1", created.ID), storage.ErrConflict)

	doc := findSummary(t, mem, 2024, 3)
	require.Equal(t, 50, doc.TotalPallets)
	_, err = mem.FindSummary(ctx, "C1", 2024, 4)
	require.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := mem.FindRecord(ctx, "C1", created.ID)
	require.NoError(t, err)
	require.Equal(t, "2024-03-01", stored.WorkDate.String())
}

func TestRebuild(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, Options{})
	ctx := context.Background()

	_, err := svc.Create(ctx, lotteRecord("2024-03-01", 50, apple(30)), kim)
	require.NoError(t, err)
	_, err = svc.Create(ctx, lotteRecord("2024-03-02", 20), kim)
	require.NoError(t, err)

	doc, err := svc.Rebuild(ctx, "C1", 2024, 3)
	require.NoError(t, err)
	require.Equal(t, 70, doc.TotalPallets)
	require.Equal(t, 2, doc.TotalRecords)
	require.Equal(t, testNow, doc.LastUpdated)

	_, err = svc.Rebuild(ctx, "C1", 2024, 13)
	require.ErrorIs(t, err, validation.ErrInvalid)
}

func TestService_ObservesOutcomes(t *testing.T) {
	observer := &recordingObserver{}
	svc := newTestService(t, memory.NewStore(), Options{Observer: observer})
	ctx := context.Background()

	_, err := svc.Create(ctx, lotteRecord("2024-03-01", 5), kim)
	require.NoError(t, err)
	_, err = svc.Create(ctx, lotteRecord("2024-03-01", 0), kim)
	require.Error(t, err)
	require.Error(t, svc.Delete(ctx, "C1", "nope"))

	require.Equal(t, []string{
		"create:" + metrics.OutcomeOK,
		"create:" + metrics.OutcomeInvalid,
		"delete:" + metrics.OutcomeNotFound,
	}, observer.calls)
}

type stubResolver map[string]catalog.Distributor

func (s stubResolver) Resolve(_ context.Context, id string) (*catalog.Distributor, error) {
	d, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownDistributor, id)
	}
	return &d, nil
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveMutation(op, outcome string, _ time.Duration) {
	o.calls = append(o.calls, op+":"+outcome)
}
