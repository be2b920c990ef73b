package aggregate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hotel-forecast/internal/stats"
)

// table is a CSV file addressed by header name.
type table struct {
	columns map[string]int
	records [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &EmptyDatasetError{Reason: "file has no header row"}
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := t.columns[name]; !dup {
			t.columns[name] = i
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.records)+2, err)
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

func (t *table) has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// missing returns the names not present in the header, in the order given.
func (t *table) missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if n != "" && !t.has(n) {
			out = append(out, n)
		}
	}
	return out
}

func (t *table) value(rec []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ParseFinite parses a number cell, rejecting NaN and infinities along with malformed text.
func ParseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !stats.Finite(v) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}
