package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/forecast"
	"hotel-forecast/internal/ratios"
)

func march(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

func headerLine() string {
	cols := []string{gridCorner}
	for _, m := range monthHeaders {
		cols = append(cols, m, m+forecastSuffix)
	}
	return strings.Join(cols, ",")
}

// row renders a grid row with current-occupancy cells set per month index.
func row(day int, values map[int]string) string {
	cols := []string{strconv.Itoa(day)}
	for m := range monthHeaders {
		cols = append(cols, values[m], "")
	}
	return strings.Join(cols, ",")
}

func weekdayTable(ratio float64) *ratios.Table {
	var entries []ratios.Entry
	for d := 0; d <= 30; d++ {
		entries = append(entries, ratios.Entry{DayType: dates.Weekday, DaysOut: d, AvgCompletionRatio: ratio, SampleCount: 150, Confidence: ratios.High})
	}
	return ratios.NewTable(entries)
}

func TestReadGrid(t *testing.T) {
	input := strings.Join([]string{
		"Upload Date (DD/MM/YY),05/03/26",
		"",
		headerLine(),
		row(9, map[int]string{2: "40"}),
		row(31, map[int]string{1: "55", 2: "12.5"}),
	}, "\n")

	g, err := ReadGrid(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.UploadDate.Equal(march(5)) {
		t.Errorf("expected upload date 2026-03-05, got %v", g.UploadDate)
	}
	if len(g.Days) != 365 {
		t.Fatalf("expected 365 calendar days, got %d", len(g.Days))
	}

	got := make(map[time.Time]float64)
	for _, d := range g.Days {
		got[d.StayDate] = d.CurrentOccupancy
	}
	if got[march(9)] != 40 {
		t.Errorf("expected 9 Mar 40, got %v", got[march(9)])
	}
	if got[march(31)] != 12.5 {
		t.Errorf("expected 31 Mar 12.5, got %v", got[march(31)])
	}
	if got[march(10)] != 0 {
		t.Errorf("expected blank cell to read 0, got %v", got[march(10)])
	}
	if _, ok := got[time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)]; !ok {
		t.Error("expected every calendar date to be present")
	}
}

func TestReadGrid_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no upload date", input: headerLine() + "\n" + row(1, nil)},
		{name: "no header", input: "Upload Date (DD/MM/YY),05/03/26\n1,2,3"},
		{name: "bad occupancy", input: "Upload Date (DD/MM/YY),05/03/26\n" + headerLine() + "\n" + row(2, map[int]string{0: "full"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadGrid(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadGrid_InvalidUploadDate(t *testing.T) {
	_, err := ReadGrid(strings.NewReader("Upload Date (DD/MM/YY),2026-03-05\n" + headerLine()))
	var fe *dates.InvalidFormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected InvalidFormatError, got %v", err)
	}
}

func TestRun(t *testing.T) {
	g := &Grid{
		UploadDate: march(5),
		Days: []Day{
			{StayDate: march(4), CurrentOccupancy: 50},  // past
			{StayDate: march(7), CurrentOccupancy: 45},  // Saturday: no weekend ratios
			{StayDate: march(9), CurrentOccupancy: 40},  // 4 days out
			{StayDate: march(10), CurrentOccupancy: 0},  // nothing booked
			{StayDate: march(36), CurrentOccupancy: 30}, // 5 April, 31 days out
		},
	}

	res, err := Run(context.Background(), g, weekdayTable(0.5), forecast.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Skipped{Past: 1, BeyondWindow: 1, NoOccupancy: 1, Failed: 1}
	if res.Skipped != want {
		t.Errorf("expected skipped %+v, got %+v", want, res.Skipped)
	}
	if len(res.Forecasts) != 1 {
		t.Fatalf("expected 1 forecast, got %d", len(res.Forecasts))
	}
	f := res.Forecasts[0]
	if f.DaysOut != 4 || f.ForecastOccupancyPct != 80 || f.ForecastOccupancyRooms != 80 {
		t.Errorf("unexpected forecast: %+v", f)
	}
}

func TestRun_NoTable(t *testing.T) {
	_, err := Run(context.Background(), &Grid{UploadDate: march(5)}, nil, forecast.DefaultConfig())
	if !errors.Is(err, forecast.ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestWriteGrid(t *testing.T) {
	input := strings.Join([]string{
		"Upload Date (DD/MM/YY),05/03/26",
		headerLine(),
		row(9, map[int]string{2: "40"}),
		row(12, map[int]string{2: "33"}),
	}, "\n")
	g, err := ReadGrid(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := Run(context.Background(), g, weekdayTable(0.6), forecast.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGrid(&buf, g, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cr := csv.NewReader(bytes.NewReader(buf.Bytes()))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 2+gridDays {
		t.Fatalf("expected %d rows, got %d", 2+gridDays, len(records))
	}
	marCur, marForecast := 1+2*2, 2+2*2
	day9 := records[2+8]
	if day9[marCur] != "40" || day9[marForecast] != "66.7" {
		t.Errorf("expected 9 Mar 40 / 66.7, got %s / %s", day9[marCur], day9[marForecast])
	}
	day12 := records[2+11]
	if day12[marForecast] != "55.0" {
		t.Errorf("expected 12 Mar forecast 55.0, got %s", day12[marForecast])
	}
	feb30 := records[2+29]
	if feb30[1+2*1] != "" || feb30[2+2*1] != "" {
		t.Errorf("expected 30 Feb cells to be blank, got %q %q", feb30[3], feb30[4])
	}

	again, err := ReadGrid(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output should parse as input: %v", err)
	}
	if len(again.Days) != len(g.Days) || !again.UploadDate.Equal(g.UploadDate) {
		t.Errorf("round trip changed the grid")
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, time.Date(2028, time.February, 10, 14, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := ReadGrid(&buf)
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if len(g.Days) != 366 {
		t.Errorf("expected 366 days in a leap year, got %d", len(g.Days))
	}
	for _, d := range g.Days {
		if d.CurrentOccupancy != 0 {
			t.Fatalf("expected empty template, got %v on %v", d.CurrentOccupancy, d.StayDate)
		}
	}
}
