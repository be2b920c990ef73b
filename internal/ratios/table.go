package ratios

import (
	"cmp"
	"fmt"
	"slices"

	"hotel-forecast/internal/dates"
)

// Confidence flags whether a bucket has enough history to trust.
type Confidence string

const (
	High Confidence = "high"
	Low  Confidence = "low"
)

// Entry is one (day type, days out) bucket of the calibration table.
type Entry struct {
	DayType            dates.DayType `json:"day_type"`
	DaysOut            int           `json:"days_out"`
	AvgCompletionRatio float64       `json:"avg_completion_ratio"`
	SampleCount        int           `json:"sample_count"`
	StdDeviation       float64       `json:"std_deviation"`
	MinRatio           float64       `json:"min_ratio,omitempty"`
	MaxRatio           float64       `json:"max_ratio,omitempty"`
	Confidence         Confidence    `json:"confidence"`
}

// Key identifies a bucket.
type Key struct {
	DayType dates.DayType
	DaysOut int
}

// NotFoundError is returned when a bucket is missing from the table.
type NotFoundError struct {
	DayType dates.DayType
	DaysOut int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no completion ratio found for day_type=%s, days_out=%d", e.DayType, e.DaysOut)
}

// ZeroRatioError is returned when a bucket's ratio is exactly 0 and cannot divide.
type ZeroRatioError struct {
	DayType dates.DayType
	DaysOut int
}

func (e *ZeroRatioError) Error() string {
	return fmt.Sprintf("completion ratio is zero for day_type=%s, days_out=%d", e.DayType, e.DaysOut)
}

// Table is an immutable completion-ratio lookup. Build a new one to change it.
type Table struct {
	entries []Entry
	index   map[Key]int
}

// NewTable copies entries into a table sorted by day type ascending then days out
// descending. When a bucket repeats, its first occurrence wins.
func NewTable(entries []Entry) *Table {
	t := &Table{index: make(map[Key]int, len(entries))}
	for _, e := range entries {
		k := Key{e.DayType, e.DaysOut}
		if _, dup := t.index[k]; dup {
			continue
		}
		t.index[k] = -1
		t.entries = append(t.entries, e)
	}
	slices.SortFunc(t.entries, compareEntries)
	for i, e := range t.entries {
		t.index[Key{e.DayType, e.DaysOut}] = i
	}
	return t
}

func compareEntries(a, b Entry) int {
	if c := cmp.Compare(a.DayType, b.DayType); c != 0 {
		return c
	}
	return cmp.Compare(b.DaysOut, a.DaysOut)
}

// Lookup returns the bucket for (dayType, daysOut). A missing bucket yields
// NotFoundError; a zero ratio yields ZeroRatioError.
func (t *Table) Lookup(dayType dates.DayType, daysOut int) (Entry, error) {
	i, ok := t.index[Key{dayType, daysOut}]
	if !ok {
		return Entry{}, &NotFoundError{DayType: dayType, DaysOut: daysOut}
	}
	e := t.entries[i]
	if e.AvgCompletionRatio == 0 {
		return e, &ZeroRatioError{DayType: dayType, DaysOut: daysOut}
	}
	return e, nil
}

// Len reports the number of buckets.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of all buckets in table order.
func (t *Table) Entries() []Entry {
	return slices.Clone(t.entries)
}

// Curve returns the buckets of one day type, 30 days out first.
func (t *Table) Curve(dayType dates.DayType) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.DayType == dayType {
			out = append(out, e)
		}
	}
	return out
}

// DayTypes lists the distinct day types present, in table order.
func (t *Table) DayTypes() []dates.DayType {
	var out []dates.DayType
	for _, e := range t.entries {
		if len(out) == 0 || out[len(out)-1] != e.DayType {
			out = append(out, e.DayType)
		}
	}
	return out
}
