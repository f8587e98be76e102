package validation

import (
	"errors"
	"testing"
	"time"

	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func validRecord() *v1.WorkRecord {
	return &v1.WorkRecord{
		CompanyID:     "C1",
		DistributorID: "D1",
		TotalPallets:  50,
		Items: v1.WorkItems{
			{ItemName: "Apple", Quantity: 30, Unit: v1.UnitPallet, Category: "Fruit"},
		},
		WorkDate: v1.Date{Year: 2024, Month: time.March, Day: 1},
	}
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name      string
		policy    string
		positive  bool
		mutate    func(r *v1.WorkRecord)
		wantField string
	}{
		{name: "valid not_exceed", policy: PolicyNotExceed, positive: true},
		{name: "missing company", mutate: func(r *v1.WorkRecord) { r.CompanyID = "" }, wantField: "company_id"},
		{name: "missing distributor", mutate: func(r *v1.WorkRecord) { r.DistributorID = "" }, wantField: "distributor_id"},
		{name: "negative pallets", mutate: func(r *v1.WorkRecord) { r.TotalPallets = -1 }, wantField: "total_pallets"},
		{name: "zero pallets allowed without positive rule", mutate: func(r *v1.WorkRecord) {
			r.TotalPallets = 0
			r.Items = nil
		}},
		{name: "zero pallets rejected with positive rule", positive: true, mutate: func(r *v1.WorkRecord) {
			r.TotalPallets = 0
			r.Items = nil
		}, wantField: "total_pallets"},
		{name: "missing work date", mutate: func(r *v1.WorkRecord) { r.WorkDate = v1.Date{} }, wantField: "work_date"},
		{name: "item without name", mutate: func(r *v1.WorkRecord) { r.Items[0].ItemName = "" }, wantField: "items[0].item_name"},
		{name: "negative item quantity", mutate: func(r *v1.WorkRecord) { r.Items[0].Quantity = -2 }, wantField: "items[0].quantity"},
		{name: "items exceed total", mutate: func(r *v1.WorkRecord) { r.Items[0].Quantity = 51 }, wantField: "items"},
		{name: "exact rejects partial sum", policy: PolicyExact, wantField: "items"},
		{name: "exact accepts equal sum", policy: PolicyExact, mutate: func(r *v1.WorkRecord) { r.Items[0].Quantity = 50 }},
		{name: "unknown status", mutate: func(r *v1.WorkRecord) { r.Status = "LOST" }, wantField: "status"},
		{name: "unknown unit", mutate: func(r *v1.WorkRecord) { r.Items[0].Unit = "CRATE" }, wantField: "items[0].unit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := New(Options{ItemSumPolicy: tc.policy, RequirePositivePallets: tc.positive})
			require.NoError(t, err)

			r := validRecord()
			if tc.mutate != nil {
				tc.mutate(r)
			}

			err = v.Validate(r)
			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			var vErr *Error
			require.True(t, errors.As(err, &vErr))
			require.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestNew_UnknownPolicy(t *testing.T) {
	_, err := New(Options{ItemSumPolicy: "approximately"})
	require.Error(t, err)
}
