package aggregate

import (
	"fmt"
	"strings"
	"time"

	"hotel-forecast/internal/dates"
)

// MaxDaysOut is the earliest tracked booking horizon.
const MaxDaysOut = 30

// Snapshot is one observation of cumulative bookings for a stay date at a days-out horizon.
// Current and Final share a unit: rooms for the offline aggregate, percent of capacity
// for uploads and percentage datasets.
type Snapshot struct {
	StayDate time.Time     `json:"stay_date"`
	DaysOut  int           `json:"days_out"`
	Current  float64       `json:"current_occupancy"`
	Final    float64       `json:"final_occupancy"`
	DayType  dates.DayType `json:"day_type"`
}

// MissingColumnsError names the required columns absent from an input table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// EmptyDatasetError is returned when cleaning leaves nothing to calibrate or backtest.
type EmptyDatasetError struct {
	Reason string
}

func (e *EmptyDatasetError) Error() string {
	return "empty dataset: " + e.Reason
}
