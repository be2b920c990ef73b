package forecast

import (
	"slices"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/validation"
)

// MonthlyValues maps jan..dec to a per-month target occupancy or ADR budget.
type MonthlyValues map[string]float64

// For returns the value of t's month.
func (m MonthlyValues) For(field string, t time.Time) (float64, error) {
	key := dates.MonthKey(t)
	v, ok := m[key]
	if !ok {
		return 0, validation.Errorf(field, "ERR_MONTH", "%s has no value for %s", field, key)
	}
	return v, nil
}

// unknownKeys returns keys that are not jan..dec.
func (m MonthlyValues) unknownKeys() []string {
	var out []string
	for k := range m {
		if !slices.Contains(dates.MonthKeys(), k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
