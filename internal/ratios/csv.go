package ratios

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/dates"
)

var tableColumns = []string{"day_type", "days_out", "avg_completion_ratio", "sample_count", "std_deviation", "confidence"}

// LoadTable reads a ratio table. day_type, days_out, avg_completion_ratio and
// sample_count are required; a missing confidence column is derived from
// minSampleSize.
func LoadTable(r io.Reader, minSampleSize int) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &aggregate.EmptyDatasetError{Reason: "ratio table has no header row"}
		}
		return nil, fmt.Errorf("failed to read ratio table header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, name := range tableColumns[:4] {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &aggregate.MissingColumnsError{Columns: missing}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ratio table line %d: %w", line, err)
		}

		dayType, ok := dates.NormalizeDayType(get(rec, "day_type"))
		if !ok {
			return nil, fmt.Errorf("ratio table line %d: unknown day_type %q", line, get(rec, "day_type"))
		}
		daysOut, err := strconv.Atoi(get(rec, "days_out"))
		if err != nil {
			return nil, fmt.Errorf("ratio table line %d: days_out: %w", line, err)
		}
		ratio, err := aggregate.ParseFinite(get(rec, "avg_completion_ratio"))
		if err != nil {
			return nil, fmt.Errorf("ratio table line %d: avg_completion_ratio: %w", line, err)
		}
		count, err := strconv.Atoi(get(rec, "sample_count"))
		if err != nil {
			return nil, fmt.Errorf("ratio table line %d: sample_count: %w", line, err)
		}

		e := Entry{DayType: dayType, DaysOut: daysOut, AvgCompletionRatio: ratio, SampleCount: count}
		if s := get(rec, "std_deviation"); s != "" {
			if e.StdDeviation, err = aggregate.ParseFinite(s); err != nil {
				return nil, fmt.Errorf("ratio table line %d: std_deviation: %w", line, err)
			}
		}
		switch Confidence(strings.ToLower(get(rec, "confidence"))) {
		case High:
			e.Confidence = High
		case Low:
			e.Confidence = Low
		default:
			e.Confidence = Low
			if count >= minSampleSize {
				e.Confidence = High
			}
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, &aggregate.EmptyDatasetError{Reason: "ratio table has no rows"}
	}
	return NewTable(entries), nil
}

// LoadTableFile reads the ratio table at path.
func LoadTableFile(path string, minSampleSize int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("completion ratios file not found: %w", err)
	}
	defer f.Close()
	return LoadTable(f, minSampleSize)
}

// WriteTable writes t in the flat six-column layout LoadTable reads.
func WriteTable(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableColumns); err != nil {
		return err
	}
	for _, e := range t.entries {
		rec := []string{
			string(e.DayType),
			strconv.Itoa(e.DaysOut),
			strconv.FormatFloat(e.AvgCompletionRatio, 'f', -1, 64),
			strconv.Itoa(e.SampleCount),
			strconv.FormatFloat(e.StdDeviation, 'f', -1, 64),
			string(e.Confidence),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveTableFile writes t to path via a temp file and rename.
func SaveTableFile(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
