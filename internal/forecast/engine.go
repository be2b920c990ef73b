package forecast

import (
	"errors"
	"math"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/stats"
	"hotel-forecast/internal/validation"
)

// ErrNoTable is returned when no ratio table has been loaded.
var ErrNoTable = errors.New("no completion ratio table loaded")

// Input is a live booking snapshot for one stay date.
type Input struct {
	StayDate         time.Time
	AsOf             time.Time
	CurrentOccupancy float64 // percent, 0-100
	TotalRooms       int
	EventLevel       EventLevel
}

// Result is the occupancy forecast for one stay date.
type Result struct {
	DaysOut                int               `json:"days_out"`
	DayType                dates.DayType     `json:"day_type"`
	CompletionRatio        float64           `json:"completion_ratio"`
	ForecastOccupancyPct   float64           `json:"forecast_occupancy_pct"`
	ForecastOccupancyRooms int               `json:"forecast_occupancy_rooms"`
	ConfidenceLevel        ratios.Confidence `json:"confidence_level"`
	SampleCount            int               `json:"sample_count"`
	ForecastCapped         bool              `json:"forecast_capped"`
}

// Occupancy forecasts final occupancy as current / completion ratio. Event days display
// as "event" but read weekend ratios. Forecasts above 100% are kept and flagged.
func Occupancy(in Input, table *ratios.Table, cfg Config) (Result, error) {
	if err := in.check(); err != nil {
		return Result{}, err
	}
	if table == nil {
		return Result{}, ErrNoTable
	}

	daysOut := dates.DaysBetween(in.StayDate, in.AsOf)
	if daysOut < 0 || daysOut > cfg.MaxDaysOut {
		return Result{}, &OutOfRangeError{DaysOut: daysOut, Min: 0, Max: cfg.MaxDaysOut}
	}

	dayType := dates.Of(in.StayDate)
	lookup := dayType
	if in.EventLevel != EventNone {
		dayType = dates.Event
		lookup = dates.Weekend
	}

	if in.CurrentOccupancy == 0 && daysOut >= cfg.ZeroOccDaysThreshold {
		return Result{}, &InsufficientDataError{DaysOut: daysOut, Threshold: cfg.ZeroOccDaysThreshold}
	}

	entry, err := table.Lookup(lookup, daysOut)
	if err != nil {
		return Result{}, err
	}

	pct := in.CurrentOccupancy / entry.AvgCompletionRatio
	return Result{
		DaysOut:                daysOut,
		DayType:                dayType,
		CompletionRatio:        entry.AvgCompletionRatio,
		ForecastOccupancyPct:   stats.Round(pct, 2),
		ForecastOccupancyRooms: int(math.Round(pct * float64(in.TotalRooms) / 100)),
		ConfidenceLevel:        entry.Confidence,
		SampleCount:            entry.SampleCount,
		ForecastCapped:         pct > 100,
	}, nil
}

func (in *Input) check() error {
	var errs validation.Errors
	if in.CurrentOccupancy < 0 || in.CurrentOccupancy > 100 || math.IsNaN(in.CurrentOccupancy) {
		errs = append(errs, validation.Errorf("current_occupancy", "ERR_RANGE", "current_occupancy must be between 0 and 100 (percentage), got %v", in.CurrentOccupancy))
	}
	if in.TotalRooms <= 0 {
		errs = append(errs, validation.Errorf("total_rooms_available", "ERR_GT", "total_rooms_available must be greater than 0, got %d", in.TotalRooms))
	}
	if in.EventLevel == "" {
		in.EventLevel = EventNone
	}
	if !in.EventLevel.Valid() {
		errs = append(errs, validation.Errorf("event_level", "ERR_ONEOF", "event_level must be one of: none, minor, major, got %q", in.EventLevel))
	}
	return errs.OrNil()
}
