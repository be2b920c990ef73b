package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used across the engine. Compact layouts are fixed-width digit strings.
const (
	LayoutDDMMYY   = "020106"
	LayoutDDMMYYYY = "02012006"
	LayoutISO      = "2006-01-02"
	LayoutGrid     = "02/01/06"
)

// DayType is the segmentation axis of the completion-ratio table.
type DayType string

const (
	Weekday DayType = "weekday"
	Weekend DayType = "weekend"
	// Event is display-only; lookups resolve it to Weekend.
	Event DayType = "event"
)

var monthKeys = [12]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// MonthKeys returns the lower-case month keys jan..dec in calendar order.
func MonthKeys() []string {
	return monthKeys[:]
}

// InvalidFormatError is returned when a date string does not match its expected layout
// or names a day that does not exist.
type InvalidFormatError struct {
	Value  string
	Layout string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid date format: %q (expected %s)", e.Value, describeLayout(e.Layout))
}

func describeLayout(layout string) string {
	switch layout {
	case LayoutDDMMYY:
		return "DDMMYY, e.g. 150226"
	case LayoutDDMMYYYY:
		return "DDMMYYYY, e.g. 15022026"
	case LayoutISO:
		return "YYYY-MM-DD"
	case LayoutGrid:
		return "DD/MM/YY"
	}
	return "layout " + layout
}

// ParseCompact parses a fixed-width all-digit date such as DDMMYY. Calendar-invalid
// dates (Feb 30) are rejected.
func ParseCompact(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(layout) || !allDigits(s) {
		return time.Time{}, &InvalidFormatError{Value: s, Layout: layout}
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, &InvalidFormatError{Value: s, Layout: layout}
	}
	return t, nil
}

// ParsePadded parses a DDMMYYYY value whose leading zero may have been lost by a
// numeric column (1012024 -> 01012024).
func ParsePadded(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n := len(LayoutDDMMYYYY) - len(s); n > 0 {
		s = strings.Repeat("0", n) + s
	}
	return ParseCompact(s, LayoutDDMMYYYY)
}

// ParseISO parses a YYYY-MM-DD date.
func ParseISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutISO, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, &InvalidFormatError{Value: s, Layout: LayoutISO}
	}
	return t, nil
}

// Format renders t with the given layout.
func Format(t time.Time, layout string) string {
	return t.Format(layout)
}

// Civil drops the clock and zone, keeping the calendar date.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Of classifies a date: Monday-Thursday is a weekday, Friday-Sunday a weekend.
func Of(t time.Time) DayType {
	// Monday = 0
	idx := (int(t.Weekday()) + 6) % 7
	if idx <= 3 {
		return Weekday
	}
	return Weekend
}

// DaysBetween returns later - earlier in whole calendar days. Negative when earlier
// falls after later.
func DaysBetween(later, earlier time.Time) int {
	return int(Civil(later).Sub(Civil(earlier)).Hours() / 24)
}

// MonthKey returns jan..dec for t.
func MonthKey(t time.Time) string {
	return monthKeys[t.Month()-1]
}

// NormalizeDayType maps stored labels and their common aliases onto Weekday or Weekend.
// ok is false for anything unrecognised.
func NormalizeDayType(s string) (DayType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekday", "weekdays", "week day", "wd":
		return Weekday, true
	case "weekend", "weekends", "week end", "we":
		return Weekend, true
	}
	return "", false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
