package bulk

import (
	"context"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/forecast"
	"hotel-forecast/internal/ratios"

	"github.com/rs/zerolog/log"
)

// Rooms is the capacity assumed for every bulk forecast.
const Rooms = 100

// Forecast is the occupancy forecast of one grid date.
type Forecast struct {
	StayDate         time.Time `json:"stay_date"`
	CurrentOccupancy float64   `json:"current_occupancy"`
	forecast.Result
}

// Skipped counts grid dates that were not forecast, by reason.
type Skipped struct {
	Past         int `json:"past"`
	BeyondWindow int `json:"beyond_window"`
	NoOccupancy  int `json:"no_occupancy"`
	Failed       int `json:"failed"`
}

// Result is the outcome of a bulk run.
type Result struct {
	UploadDate time.Time  `json:"upload_date"`
	Forecasts  []Forecast `json:"forecasts"`
	Skipped    Skipped    `json:"skipped"`
}

// Run forecasts every grid date between the upload date and the forecast horizon that
// has bookings, with no event and Rooms capacity. Dates whose forecast fails with an
// engine error are logged and skipped.
func Run(ctx context.Context, g *Grid, table *ratios.Table, cfg forecast.Config) (*Result, error) {
	if table == nil {
		return nil, forecast.ErrNoTable
	}

	res := &Result{UploadDate: g.UploadDate, Forecasts: []Forecast{}}
	for _, d := range g.Days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		daysOut := dates.DaysBetween(d.StayDate, g.UploadDate)
		switch {
		case daysOut < 0:
			res.Skipped.Past++
			continue
		case daysOut > cfg.MaxDaysOut:
			res.Skipped.BeyondWindow++
			continue
		case d.CurrentOccupancy == 0:
			res.Skipped.NoOccupancy++
			continue
		}

		out, err := forecast.Occupancy(forecast.Input{
			StayDate:         d.StayDate,
			AsOf:             g.UploadDate,
			CurrentOccupancy: d.CurrentOccupancy,
			TotalRooms:       Rooms,
			EventLevel:       forecast.EventNone,
		}, table, cfg)
		if err != nil {
			if !forecast.IsForecastError(err) {
				return nil, err
			}
			res.Skipped.Failed++
			log.Warn().Err(err).Str("stay_date", dates.Format(d.StayDate, dates.LayoutISO)).Msg("Bulk forecast skipped date")
			continue
		}
		res.Forecasts = append(res.Forecasts, Forecast{StayDate: d.StayDate, CurrentOccupancy: d.CurrentOccupancy, Result: out})
	}

	log.Info().
		Str("upload_date", dates.Format(g.UploadDate, dates.LayoutISO)).
		Int("forecasts", len(res.Forecasts)).
		Int("failed", res.Skipped.Failed).
		Msg("Bulk forecast complete")
	return res, nil
}
