package forecast

import (
	"errors"
	"fmt"

	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"
)

// OutOfRangeError is returned when the stay date is in the past or beyond the horizon.
type OutOfRangeError struct {
	DaysOut int
	Min     int
	Max     int
}

func (e *OutOfRangeError) Error() string {
	if e.DaysOut < e.Min {
		return fmt.Sprintf("stay date is in the past (days_out=%d)", e.DaysOut)
	}
	return fmt.Sprintf("days_out=%d is beyond the supported horizon of %d-%d days", e.DaysOut, e.Min, e.Max)
}

// InsufficientDataError is returned when there are no bookings this far out.
type InsufficientDataError struct {
	DaysOut   int
	Threshold int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient booking data: 0%% occupancy at %d days out (threshold %d); check back when bookings begin", e.DaysOut, e.Threshold)
}

// IsForecastError reports whether err is one of the engine's own rejections, as opposed
// to an I/O or programming failure.
func IsForecastError(err error) bool {
	var (
		oor *OutOfRangeError
		ins *InsufficientDataError
		nf  *ratios.NotFoundError
		zr  *ratios.ZeroRatioError
	)
	return errors.As(err, &oor) ||
		errors.As(err, &ins) ||
		errors.As(err, &nf) ||
		errors.As(err, &zr) ||
		validation.Is(err)
}
