package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "valid", input: "2024-03-01", want: Date{Year: 2024, Month: time.March, Day: 1}},
		{name: "leap day", input: "2024-02-29", want: Date{Year: 2024, Month: time.February, Day: 29}},
		{name: "not a leap year", input: "2023-02-29", wantErr: true},
		{name: "wrong layout", input: "01/03/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDate(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.input, got.String())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		WorkDate Date `json:"work_date"`
	}

	b, err := json.Marshal(wrapper{WorkDate: Date{Year: 2024, Month: time.April, Day: 7}})
	require.NoError(t, err)
	require.JSONEq(t, `{"work_date":"2024-04-07"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"work_date":"2024-12-31"}`), &w))
	require.Equal(t, Date{Year: 2024, Month: time.December, Day: 31}, w.WorkDate)

	require.NoError(t, json.Unmarshal([]byte(`{"work_date":""}`), &w))
	require.True(t, w.WorkDate.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"work_date":20240101}`), &w))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2024-03-15", d.String())

	require.NoError(t, d.Scan([]byte("2024-01-02")))
	require.Equal(t, "2024-01-02", d.String())

	require.NoError(t, d.Scan(nil))
	require.True(t, d.IsZero())

	require.Error(t, d.Scan(42))
}

func TestDate_AddDaysAndOrdering(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 28}
	require.Equal(t, "2024-02-29", d.AddDays(1).String())
	require.Equal(t, "2024-03-01", d.AddDays(2).String())
	require.True(t, d.Before(d.AddDays(1)))
	require.True(t, d.AddDays(1).After(d))
}
