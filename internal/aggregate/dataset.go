package aggregate

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"hotel-forecast/internal/dates"
)

// Snapshot file columns.
const (
	ColStayDate        = "stay_date"
	ColDaysOut         = "days_out"
	ColCurrentOcc      = "current_occupancy"
	ColRoomsCumulative = "rooms_booked_cumulative"
	ColDayType         = "day_type"
	ColFinalOcc        = "final_occupancy"
)

// LoadReport describes how many snapshot rows survived loading.
type LoadReport struct {
	Rows    int `json:"rows"`
	Dropped int `json:"dropped_rows"`
}

// LoadDataset reads a snapshot table. It needs stay_date (DDMMYYYY), days_out,
// final_occupancy and day_type plus current_occupancy or rooms_booked_cumulative.
// Rows with unparseable values or days_out outside 0-30 are dropped; unknown day types
// are derived from the stay date.
func LoadDataset(r io.Reader) ([]Snapshot, LoadReport, error) {
	var rep LoadReport
	t, err := readTable(r)
	if err != nil {
		return nil, rep, err
	}

	miss := t.missing(ColStayDate, ColDaysOut, ColFinalOcc, ColDayType)
	currentCol := ColCurrentOcc
	if !t.has(ColCurrentOcc) {
		currentCol = ColRoomsCumulative
		if !t.has(ColRoomsCumulative) {
			miss = append(miss, ColCurrentOcc+" or "+ColRoomsCumulative)
		}
	}
	if len(miss) > 0 {
		sort.Strings(miss)
		return nil, rep, &MissingColumnsError{Columns: miss}
	}

	rows := make([]Snapshot, 0, len(t.records))
	for _, rec := range t.records {
		stay, err := dates.ParsePadded(t.value(rec, ColStayDate))
		if err != nil {
			rep.Dropped++
			continue
		}
		daysOut, err := parseWholeNumber(t.value(rec, ColDaysOut))
		if err != nil || daysOut < 0 || daysOut > MaxDaysOut {
			rep.Dropped++
			continue
		}
		current, err := ParseFinite(t.value(rec, currentCol))
		if err != nil {
			rep.Dropped++
			continue
		}
		final, err := ParseFinite(t.value(rec, ColFinalOcc))
		if err != nil {
			rep.Dropped++
			continue
		}
		dayType, ok := dates.NormalizeDayType(t.value(rec, ColDayType))
		if !ok {
			dayType = dates.Of(stay)
		}
		rows = append(rows, Snapshot{
			StayDate: stay,
			DaysOut:  daysOut,
			Current:  current,
			Final:    final,
			DayType:  dayType,
		})
	}
	rep.Rows = len(rows)
	return rows, rep, nil
}

// LoadDatasetFile opens path and reads it with LoadDataset.
func LoadDatasetFile(path string) ([]Snapshot, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, err
	}
	defer f.Close()
	return LoadDataset(f)
}

// parseWholeNumber accepts "7" as well as "7.0" from float-typed exports.
func parseWholeNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := ParseFinite(s)
	if err != nil || f != float64(int(f)) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// WriteSnapshots writes rows as a snapshot table with zero-padded DDMMYYYY stay dates.
func WriteSnapshots(w io.Writer, rows []Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColStayDate, ColDaysOut, ColRoomsCumulative, ColDayType, ColFinalOcc}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			dates.Format(r.StayDate, dates.LayoutDDMMYYYY),
			strconv.Itoa(r.DaysOut),
			formatNumber(r.Current),
			string(r.DayType),
			formatNumber(r.Final),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshotsFile writes rows to path, replacing it.
func WriteSnapshotsFile(path string, rows []Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshots(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteUploadTemplate writes a sample raw-booking table in the layout DefaultMapping reads.
func WriteUploadTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"booking_id", "stay_date", "booking_date", "rooms_booked"},
		{"BKG-0001", "2026-03-20", "2026-02-25", "1"},
		{"BKG-0002", "2026-03-20", "2026-03-05", "2"},
		{"BKG-0003", "2026-03-21", "2026-03-01", "1"},
		{"BKG-0004", "2026-03-21", "2026-03-19", "3"},
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
