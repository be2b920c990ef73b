package aggregate

import (
	"cmp"
	"slices"

	"hotel-forecast/internal/dates"

	"github.com/rs/zerolog/log"
)

// Offline converts raw bookings into room-count snapshots for model building. Every
// stay date gets a row for each days out 30..0; a missing horizon carries the value of
// the nearest larger days out, or 0 when nothing was booked that early.
func Offline(bookings []Booking) ([]Snapshot, ReadReport, error) {
	rep := ReadReport{Rows: len(bookings)}
	usable := clean(bookings, &rep)
	if len(usable) == 0 {
		return nil, rep, &EmptyDatasetError{Reason: "no bookings left after cleaning"}
	}

	cs := curves(usable)
	rows := make([]Snapshot, 0, len(cs)*(MaxDaysOut+1))
	for _, c := range cs {
		dayType := dates.Of(c.stay)

		// bookings made before the tracked window seed the curve
		carried := 0.0
		for _, d := range c.daysOut {
			if d > MaxDaysOut {
				carried = c.cumulative[d]
			}
		}

		for d := MaxDaysOut; d >= 0; d-- {
			if v, ok := c.cumulative[d]; ok {
				carried = v
			}
			rows = append(rows, Snapshot{
				StayDate: c.stay,
				DaysOut:  d,
				Current:  carried,
				Final:    c.final,
				DayType:  dayType,
			})
		}
	}
	rep.SnapshotRows = len(rows)

	log.Info().
		Int("bookings", rep.Rows).
		Int("stay_dates", len(cs)).
		Int("snapshots", len(rows)).
		Msg("Aggregated bookings into daily snapshots")

	return rows, rep, nil
}

func sortDesc(v []int) {
	slices.SortFunc(v, func(a, b int) int { return cmp.Compare(b, a) })
}

func sortCurves(cs []stayCurve) {
	slices.SortFunc(cs, func(a, b stayCurve) int { return a.stay.Compare(b.stay) })
}
