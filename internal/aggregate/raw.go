package aggregate

import (
	"fmt"
	"io"
	"os"
	"time"

	"hotel-forecast/internal/dates"

	"github.com/rs/zerolog/log"
)

// Booking is one raw booking transaction.
type Booking struct {
	ID          string
	StayDate    time.Time
	BookingDate time.Time
	Rooms       float64
}

// Mapping names the columns of an uploaded raw-booking table. Date formats are
// strftime-style (%d/%m/%Y); empty means day-first auto detection.
type Mapping struct {
	StayDateCol       string `json:"stay_date_col" validate:"required"`
	BookingDateCol    string `json:"booking_date_col" validate:"required"`
	RoomsPerRowCol    string `json:"rooms_per_row_col,omitempty"`
	BookingIDCol      string `json:"booking_id_col,omitempty"`
	StayDateFormat    string `json:"stay_date_format,omitempty"`
	BookingDateFormat string `json:"booking_date_format,omitempty"`
}

// DefaultMapping matches the upload template columns.
func DefaultMapping() Mapping {
	return Mapping{
		StayDateCol:    "stay_date",
		BookingDateCol: "booking_date",
		RoomsPerRowCol: "rooms_booked",
		BookingIDCol:   "booking_id",
	}
}

// ReadReport counts rows seen and rejected while reading raw bookings.
type ReadReport struct {
	Rows         int `json:"rows"`
	Unparseable  int `json:"unparseable_rows"`
	NonPositive  int `json:"non_positive_rooms"`
	BookedAfter  int `json:"booked_after_stay"`
	Usable       int `json:"usable_rows"`
	OutOfWindow  int `json:"out_of_window_pairs,omitempty"`
	OutOfBounds  int `json:"out_of_bounds_rows,omitempty"`
	SnapshotRows int `json:"snapshot_rows,omitempty"`
}

// ReadBookings parses a raw booking table through m. Rows with unparseable dates or
// room counts are dropped and counted; a missing rooms column means one room per row.
func ReadBookings(r io.Reader, m Mapping) ([]Booking, ReadReport, error) {
	var rep ReadReport
	if m.StayDateCol == "" || m.BookingDateCol == "" {
		return nil, rep, fmt.Errorf("stay_date_col and booking_date_col mappings are required")
	}

	t, err := readTable(r)
	if err != nil {
		return nil, rep, err
	}
	if miss := t.missing(m.StayDateCol, m.BookingDateCol, m.RoomsPerRowCol); len(miss) > 0 {
		return nil, rep, &MissingColumnsError{Columns: miss}
	}

	stayParser, err := dates.NewParser(m.StayDateFormat)
	if err != nil {
		return nil, rep, fmt.Errorf("stay_date_format: %w", err)
	}
	bookingParser, err := dates.NewParser(m.BookingDateFormat)
	if err != nil {
		return nil, rep, fmt.Errorf("booking_date_format: %w", err)
	}

	bookings := make([]Booking, 0, len(t.records))
	for _, rec := range t.records {
		rep.Rows++
		stay, err := stayParser.Parse(t.value(rec, m.StayDateCol))
		if err != nil {
			rep.Unparseable++
			continue
		}
		booked, err := bookingParser.Parse(t.value(rec, m.BookingDateCol))
		if err != nil {
			rep.Unparseable++
			continue
		}
		rooms := 1.0
		if m.RoomsPerRowCol != "" {
			rooms, err = ParseFinite(t.value(rec, m.RoomsPerRowCol))
			if err != nil {
				rep.Unparseable++
				continue
			}
		}
		bookings = append(bookings, Booking{
			ID:          t.value(rec, m.BookingIDCol),
			StayDate:    stay,
			BookingDate: booked,
			Rooms:       rooms,
		})
	}
	return bookings, rep, nil
}

// ReadBookingsFile opens path and reads it with ReadBookings.
func ReadBookingsFile(path string, m Mapping) ([]Booking, ReadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadReport{}, err
	}
	defer f.Close()
	return ReadBookings(f, m)
}

// clean drops non-positive room counts and bookings made after the stay.
func clean(bookings []Booking, rep *ReadReport) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Rooms <= 0 {
			rep.NonPositive++
			continue
		}
		if b.BookingDate.After(b.StayDate) {
			rep.BookedAfter++
			continue
		}
		out = append(out, b)
	}
	rep.Usable = len(out)
	return out
}

// stayCurve is the booking curve of a single stay date.
type stayCurve struct {
	stay  time.Time
	final float64
	// cumulative rooms keyed by days out, for every distinct booking date
	cumulative map[int]float64
	daysOut    []int // descending
}

// curves groups bookings per stay date and accumulates rooms in booking-date order.
func curves(bookings []Booking) []stayCurve {
	type key struct{ stay, booked time.Time }
	perDay := make(map[key]float64)
	perStay := make(map[time.Time]float64)
	for _, b := range bookings {
		k := key{dates.Civil(b.StayDate), dates.Civil(b.BookingDate)}
		perDay[k] += b.Rooms
		perStay[k.stay] += b.Rooms
	}

	byStay := make(map[time.Time][]int)
	for k := range perDay {
		byStay[k.stay] = append(byStay[k.stay], dates.DaysBetween(k.stay, k.booked))
	}

	out := make([]stayCurve, 0, len(byStay))
	for stay, daysOut := range byStay {
		sortDesc(daysOut)
		c := stayCurve{stay: stay, final: perStay[stay], cumulative: make(map[int]float64, len(daysOut)), daysOut: daysOut}
		running := 0.0
		for _, d := range daysOut {
			running += perDay[key{stay, stay.AddDate(0, 0, -d)}]
			c.cumulative[d] = running
		}
		out = append(out, c)
	}
	sortCurves(out)
	return out
}

// Upload converts raw bookings into percentage snapshots for an on-demand backtest.
// Pairs outside 0-30 days out are discarded and no gaps are filled.
func Upload(bookings []Booking, totalRooms int, rep ReadReport) ([]Snapshot, ReadReport, error) {
	if totalRooms <= 0 {
		return nil, rep, fmt.Errorf("total_rooms_available must be greater than 0, got %d", totalRooms)
	}
	usable := clean(bookings, &rep)
	if len(usable) == 0 {
		return nil, rep, &EmptyDatasetError{Reason: "no valid rows found after raw data cleaning"}
	}

	capacity := float64(totalRooms)
	var rows []Snapshot
	for _, c := range curves(usable) {
		finalPct := c.final / capacity * 100
		dayType := dates.Of(c.stay)
		for _, d := range c.daysOut {
			if d < 0 || d > MaxDaysOut {
				rep.OutOfWindow++
				continue
			}
			current := c.cumulative[d] / capacity * 100
			if current < 0 || current > 100 || finalPct < 0 || finalPct > 100 {
				rep.OutOfBounds++
				continue
			}
			rows = append(rows, Snapshot{
				StayDate: c.stay,
				DaysOut:  d,
				Current:  current,
				Final:    finalPct,
				DayType:  dayType,
			})
		}
	}
	rep.SnapshotRows = len(rows)

	log.Info().
		Int("rows", rep.Rows).
		Int("usable", rep.Usable).
		Int("out_of_window", rep.OutOfWindow).
		Int("out_of_bounds", rep.OutOfBounds).
		Int("snapshots", rep.SnapshotRows).
		Msg("Aggregated uploaded bookings")

	if len(rows) == 0 {
		return nil, rep, &EmptyDatasetError{Reason: "no usable snapshot rows were generated (days_out must be 0-30 and occupancy 0-100%)"}
	}
	return rows, rep, nil
}
