package backtest

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/forecast"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatTable(ratio float64) *ratios.Table {
	var entries []ratios.Entry
	for _, dt := range []dates.DayType{dates.Weekday, dates.Weekend} {
		for d := 0; d <= 30; d++ {
			entries = append(entries, ratios.Entry{DayType: dt, DaysOut: d, AvgCompletionRatio: ratio, SampleCount: 200, Confidence: ratios.High})
		}
	}
	return ratios.NewTable(entries)
}

func snapshot(day, daysOut int, current, final float64) aggregate.Snapshot {
	stay := time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
	return aggregate.Snapshot{StayDate: stay, DaysOut: daysOut, Current: current, Final: final, DayType: dates.Of(stay)}
}

// fixture rows: 2 Mar Mon, 3 Mar Tue, 4 Mar Wed, 7 Mar Sat.
func fixture() []aggregate.Snapshot {
	return []aggregate.Snapshot{
		snapshot(2, 10, 40, 78),
		snapshot(7, 5, 45, 100),
		snapshot(3, 25, 0, 50), // zero occupancy far out: skipped
		snapshot(4, 3, 30, 0),
	}
}

func opts() Options {
	return Options{Engine: forecast.DefaultConfig(), Workers: 4}
}

func f64(v float64) *float64 { return &v }

func TestRun(t *testing.T) {
	rep, err := Run(context.Background(), fixture(), flatTable(0.5), Filters{}, opts())
	require.NoError(t, err)

	assert.Equal(t, Metrics{
		Count:       3,
		MAE:         f64(24),
		RMSE:        f64(35.1378),
		MAPE:        f64(6.2821),
		Bias:        f64(17.3333),
		Within3Pct:  f64(33.3333),
		Within5Pct:  f64(33.3333),
		Within10Pct: f64(66.6667),
	}, rep.Summary)

	require.Len(t, rep.ByDayType, 2)
	assert.Equal(t, dates.Weekday, rep.ByDayType[0].DayType)
	assert.Equal(t, dates.Weekend, rep.ByDayType[1].DayType)
	assert.Equal(t, 2, rep.ByDayType[0].Count)
	assert.Equal(t, f64(31), rep.ByDayType[0].MAE)
	assert.Equal(t, f64(42.45), rep.ByDayType[0].RMSE)
	assert.Equal(t, f64(2.5641), rep.ByDayType[0].MAPE)
	assert.Equal(t, f64(50), rep.ByDayType[0].Within10Pct)

	require.Len(t, rep.ByDaysOut, 3)
	assert.Equal(t, []int{3, 5, 10}, []int{rep.ByDaysOut[0].DaysOut, rep.ByDaysOut[1].DaysOut, rep.ByDaysOut[2].DaysOut})
	assert.Nil(t, rep.ByDaysOut[0].MAPE, "actual 0 has no percentage error")

	assert.Equal(t, DatasetStats{
		SourceRows:    4,
		CandidateRows: 4,
		EvaluatedRows: 3,
		SkippedRows:   1,
		MinStayDate:   strPtr("2026-03-02"),
		MaxStayDate:   strPtr("2026-03-07"),
	}, rep.DatasetStats)

	require.Len(t, rep.Details, 3)
	first := rep.Details[0]
	assert.Equal(t, "2026-03-02", first.StayDate)
	assert.Equal(t, 80.0, first.PredictedFinalOccupancyPct)
	assert.Equal(t, 2.0, first.Error)
	assert.Equal(t, f64(2.5641), first.APEPct)
	assert.Nil(t, rep.Details[2].APEPct)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "all", rep.InputFilters.DayType)
	assert.Equal(t, intPtr(100), rep.InputFilters.TotalRooms)
	assert.Equal(t, intPtr(500), rep.InputFilters.DetailLimit)
}

func strPtr(s string) *string { return &s }

func TestRun_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    int
	}{
		{name: "weekend only", filters: Filters{DayType: "weekend"}, want: 1},
		{name: "weekday only", filters: Filters{DayType: "weekday"}, want: 3},
		{name: "days out window", filters: Filters{DaysOutMin: 4, DaysOutMax: intPtr(10)}, want: 2},
		{name: "explicit zero max", filters: Filters{DaysOutMax: intPtr(0)}, want: 0},
		{name: "date range", filters: Filters{StartDate: "2026-03-03", EndDate: "2026-03-04"}, want: 2},
		{name: "open start", filters: Filters{EndDate: "2026-03-02"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Run(context.Background(), fixture(), flatTable(0.5), tt.filters, opts())
			require.NoError(t, err)
			assert.Equal(t, tt.want, rep.DatasetStats.CandidateRows)
		})
	}
}

func intPtr(v int) *int { return &v }

func TestRun_EmptySet(t *testing.T) {
	rep, err := Run(context.Background(), fixture(), flatTable(0.5), Filters{StartDate: "2027-01-01"}, opts())
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Summary.Count)
	assert.Nil(t, rep.Summary.MAE)
	assert.Nil(t, rep.Summary.RMSE)
	assert.Nil(t, rep.Summary.Within3Pct)
	assert.Empty(t, rep.ByDayType)
	assert.Empty(t, rep.ByDaysOut)
	assert.NotNil(t, rep.Details)
	assert.Empty(t, rep.Details)
	assert.Nil(t, rep.DatasetStats.MinStayDate)
}

func TestRun_Deterministic(t *testing.T) {
	var rows []aggregate.Snapshot
	for day := 1; day <= 28; day++ {
		for d := 0; d <= 30; d += 3 {
			rows = append(rows, snapshot(day, d, float64(10+day), float64(40+day+d)))
		}
	}

	one := opts()
	one.Workers = 1
	many := opts()
	many.Workers = 16

	a, err := Run(context.Background(), rows, flatTable(0.45), Filters{}, one)
	require.NoError(t, err)
	b, err := Run(context.Background(), rows, flatTable(0.45), Filters{}, many)
	require.NoError(t, err)

	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.ByDayType, b.ByDayType)
	assert.Equal(t, a.ByDaysOut, b.ByDaysOut)
	assert.Equal(t, a.Details, b.Details)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRun_Details(t *testing.T) {
	rep, err := Run(context.Background(), fixture(), flatTable(0.5), Filters{DetailLimit: intPtr(2)}, opts())
	require.NoError(t, err)
	assert.Len(t, rep.Details, 2)
	assert.Equal(t, 3, rep.Summary.Count)

	rep, err = Run(context.Background(), fixture(), flatTable(0.5), Filters{DetailLimit: intPtr(0)}, opts())
	require.NoError(t, err)
	assert.Len(t, rep.Details, 1)
	assert.Equal(t, intPtr(0), rep.InputFilters.DetailLimit)

	off := false
	rep, err = Run(context.Background(), fixture(), flatTable(0.5), Filters{IncludeDetails: &off}, opts())
	require.NoError(t, err)
	assert.Empty(t, rep.Details)
}

func TestRun_InvalidFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		field   string
	}{
		{name: "min above max", filters: Filters{DaysOutMin: 20, DaysOutMax: intPtr(10)}, field: "days_out_min"},
		{name: "max above 30", filters: Filters{DaysOutMax: intPtr(31)}, field: "days_out_max"},
		{name: "start after end", filters: Filters{StartDate: "2026-03-10", EndDate: "2026-03-01"}, field: "start_date"},
		{name: "bad date", filters: Filters{StartDate: "01/03/2026"}, field: "start_date"},
		{name: "bad day type", filters: Filters{DayType: "holiday"}, field: "day_type"},
		{name: "negative rooms", filters: Filters{TotalRooms: intPtr(-5)}, field: "total_rooms_available"},
		{name: "explicit zero rooms", filters: Filters{TotalRooms: intPtr(0)}, field: "total_rooms_available"},
		{name: "negative detail limit", filters: Filters{DetailLimit: intPtr(-1)}, field: "detail_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), fixture(), flatTable(0.5), tt.filters, opts())
			require.Error(t, err)
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs.Fields(), tt.field)
		})
	}
}

func TestRun_SkipsNonFiniteRows(t *testing.T) {
	rows := append(fixture(), snapshot(9, 4, math.NaN(), 60), snapshot(10, 4, 30, math.Inf(1)))

	rep, err := Run(context.Background(), rows, flatTable(0.5), Filters{}, opts())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Summary.Count)
	assert.Equal(t, f64(24), rep.Summary.MAE)
	assert.Equal(t, 3, rep.DatasetStats.SkippedRows)

	_, err = json.Marshal(rep)
	assert.NoError(t, err)
}

func TestRun_NoTable(t *testing.T) {
	_, err := Run(context.Background(), fixture(), nil, Filters{}, opts())
	assert.ErrorIs(t, err, forecast.ErrNoTable)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, fixture(), flatTable(0.5), Filters{}, opts())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunUpload(t *testing.T) {
	csv := strings.Join([]string{
		"booking_id,stay_date,booking_date,rooms_booked",
		"1,2026-03-02,2026-02-20,20",
		"2,2026-03-02,2026-02-27,20",
		"3,2026-03-02,2026-03-05,5",
	}, "\n")

	res, err := RunUpload(context.Background(), strings.NewReader(csv), "bookings.csv", aggregate.DefaultMapping(), flatTable(0.5), Filters{}, opts())
	require.NoError(t, err)

	assert.Equal(t, "uploaded:bookings.csv", res.InputFilters.DatasetPath)
	assert.Equal(t, 1, res.Aggregation.BookedAfter)
	assert.Equal(t, 2, res.Aggregation.SnapshotRows)
	assert.Equal(t, 2, res.Summary.Count)
	assert.Equal(t, f64(20), res.Summary.MAE)
	assert.Equal(t, f64(20), res.Summary.Bias)
}

func TestRunUpload_MissingMapping(t *testing.T) {
	_, err := RunUpload(context.Background(), strings.NewReader("a,b\n1,2\n"), "x.csv", aggregate.Mapping{StayDateCol: "a"}, flatTable(0.5), Filters{}, opts())
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"booking_date_col"}, errs.Fields())
}
