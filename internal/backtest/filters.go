package backtest

import (
	"context"
	"errors"
	"time"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/validation"
)

// Defaults for filters left unset; explicit zeros are kept and validated.
const (
	defaultRooms       = 100
	defaultDetailLimit = 500
)

// Filters selects the snapshot rows a backtest replays.
type Filters struct {
	TotalRooms     *int   `json:"total_rooms_available" default:"100" validate:"gt=0"`
	StartDate      string `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate        string `json:"end_date,omitempty" validate:"omitempty,isodate"`
	DayType        string `json:"day_type" default:"all" validate:"oneof=all weekday weekend"`
	DaysOutMin     int    `json:"days_out_min" validate:"gte=0,lte=30"`
	DaysOutMax     *int   `json:"days_out_max" default:"30" validate:"omitempty,gte=0,lte=30"`
	IncludeDetails *bool  `json:"include_details" default:"true"`
	DetailLimit    *int   `json:"detail_limit" default:"500" validate:"gte=0"`
	DatasetPath    string `json:"dataset_path,omitempty"`
}

// Validate fills defaults and checks every filter, including min <= max and start <= end.
func (f *Filters) Validate(ctx context.Context) error {
	var errs validation.Errors
	if err := validation.Struct(ctx, f); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}
	if f.DaysOutMax != nil && f.DaysOutMin > *f.DaysOutMax {
		errs = append(errs, validation.Errorf("days_out_min", "ERR_LTEFIELD",
			"days_out_min (%d) must not exceed days_out_max (%d)", f.DaysOutMin, *f.DaysOutMax))
	}
	start, errStart := dates.ParseISO(f.StartDate)
	end, errEnd := dates.ParseISO(f.EndDate)
	if errStart == nil && errEnd == nil && start.After(end) {
		errs = append(errs, validation.Errorf("start_date", "ERR_LTEFIELD", "start_date cannot be after end_date"))
	}
	return errs.OrNil()
}

func (f *Filters) maxDaysOut() int {
	if f.DaysOutMax == nil {
		return aggregate.MaxDaysOut
	}
	return *f.DaysOutMax
}

func (f *Filters) details() bool {
	return f.IncludeDetails == nil || *f.IncludeDetails
}

// detailLimit never drops below one row.
func (f *Filters) detailLimit() int {
	if f.DetailLimit == nil {
		return defaultDetailLimit
	}
	return max(1, *f.DetailLimit)
}

func (f *Filters) rooms() int {
	if f.TotalRooms == nil {
		return defaultRooms
	}
	return *f.TotalRooms
}

// matcher returns the row predicate of validated filters.
func (f *Filters) matcher() func(aggregate.Snapshot) bool {
	var start, end time.Time
	if f.StartDate != "" {
		start, _ = dates.ParseISO(f.StartDate)
	}
	if f.EndDate != "" {
		end, _ = dates.ParseISO(f.EndDate)
	}
	maxOut := f.maxDaysOut()

	return func(s aggregate.Snapshot) bool {
		if s.DaysOut < f.DaysOutMin || s.DaysOut > maxOut {
			return false
		}
		if f.DayType != "all" && string(s.DayType) != f.DayType {
			return false
		}
		if !start.IsZero() && s.StayDate.Before(start) {
			return false
		}
		if !end.IsZero() && s.StayDate.After(end) {
			return false
		}
		return true
	}
}
