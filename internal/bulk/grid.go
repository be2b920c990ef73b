package bulk

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hotel-forecast/internal/dates"
)

const (
	uploadDateLabel = "Upload Date (DD/MM/YY)"
	gridCorner      = "Date/Month"
	forecastSuffix  = "_Forecast"
	gridDays        = 31
)

var monthHeaders = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Day is one real calendar date of the grid with its current occupancy percentage.
type Day struct {
	StayDate         time.Time
	CurrentOccupancy float64
}

// Grid is a parsed bulk input: the upload (as-of) date and every calendar date of the
// upload year in month then day order. Blank cells read as 0.
type Grid struct {
	UploadDate time.Time
	Days       []Day
}

// ReadGrid parses the bulk CSV layout: an "Upload Date (DD/MM/YY)" row, a
// "Date/Month, Jan, Jan_Forecast, ..." header and rows 1 to 31. Forecast columns are
// ignored; cells of impossible dates such as 31 Feb are skipped.
func ReadGrid(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}

	g := &Grid{}
	header := -1
	for i, rec := range records {
		first := strings.TrimSpace(strings.TrimPrefix(cell(rec, 0), "\ufeff"))
		switch {
		case strings.HasPrefix(first, "Upload Date"):
			raw := strings.TrimSpace(cell(rec, 1))
			t, err := time.ParseInLocation(dates.LayoutGrid, raw, time.UTC)
			if err != nil {
				return nil, &dates.InvalidFormatError{Value: raw, Layout: dates.LayoutGrid}
			}
			g.UploadDate = t
		case first == gridCorner:
			header = i
		}
		if header >= 0 {
			break
		}
	}
	if g.UploadDate.IsZero() {
		return nil, fmt.Errorf("grid has no %q row", uploadDateLabel)
	}
	if header < 0 {
		return nil, fmt.Errorf("grid has no %q header row", gridCorner)
	}

	columns, err := monthColumns(records[header])
	if err != nil {
		return nil, err
	}

	values := make(map[[2]int]float64)
	for _, rec := range records[header+1:] {
		day, err := strconv.Atoi(strings.TrimSpace(cell(rec, 0)))
		if err != nil || day < 1 || day > gridDays {
			continue
		}
		for m, col := range columns {
			raw := strings.TrimSpace(cell(rec, col))
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("day %d %s: invalid occupancy %q", day, monthHeaders[m], raw)
			}
			values[[2]int{m, day}] = v
		}
	}

	year := g.UploadDate.Year()
	for m := range monthHeaders {
		for day := 1; day <= gridDays; day++ {
			stay, ok := calendarDate(year, m, day)
			if !ok {
				continue
			}
			g.Days = append(g.Days, Day{StayDate: stay, CurrentOccupancy: values[[2]int{m, day}]})
		}
	}
	return g, nil
}

// monthColumns maps each month to the column index of its current-occupancy header.
func monthColumns(header []string) ([12]int, error) {
	var cols [12]int
	for m, name := range monthHeaders {
		cols[m] = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				cols[m] = i
				break
			}
		}
		if cols[m] < 0 {
			return cols, fmt.Errorf("grid header is missing month column %q", name)
		}
	}
	return cols, nil
}

// calendarDate returns the date for month index m and day, or false if it does not exist.
func calendarDate(year, m, day int) (time.Time, bool) {
	t := time.Date(year, time.Month(m+1), day, 0, 0, 0, 0, time.UTC)
	return t, t.Day() == day
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// WriteGrid writes the bulk layout for g with forecasts filled in to one decimal.
// Impossible dates are left blank; dates without a forecast keep an empty forecast cell.
func WriteGrid(w io.Writer, g *Grid, res *Result) error {
	current := make(map[time.Time]float64, len(g.Days))
	for _, d := range g.Days {
		current[d.StayDate] = d.CurrentOccupancy
	}
	forecasts := make(map[time.Time]float64)
	if res != nil {
		for _, f := range res.Forecasts {
			forecasts[f.StayDate] = f.ForecastOccupancyPct
		}
	}

	return writeLayout(w, g.UploadDate, func(stay time.Time) (string, string) {
		cur := strconv.FormatFloat(current[stay], 'f', -1, 64)
		fc, ok := forecasts[stay]
		if !ok {
			return cur, ""
		}
		return cur, strconv.FormatFloat(fc, 'f', 1, 64)
	})
}

// WriteTemplate writes an empty bulk grid dated uploadDate with every occupancy at 0.
func WriteTemplate(w io.Writer, uploadDate time.Time) error {
	return writeLayout(w, dates.Civil(uploadDate), func(time.Time) (string, string) {
		return "0", ""
	})
}

func writeLayout(w io.Writer, uploadDate time.Time, values func(time.Time) (string, string)) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{uploadDateLabel, uploadDate.Format(dates.LayoutGrid)}); err != nil {
		return err
	}

	header := make([]string, 0, 1+2*len(monthHeaders))
	header = append(header, gridCorner)
	for _, name := range monthHeaders {
		header = append(header, name, name+forecastSuffix)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	year := uploadDate.Year()
	for day := 1; day <= gridDays; day++ {
		rec := make([]string, 0, len(header))
		rec = append(rec, strconv.Itoa(day))
		for m := range monthHeaders {
			stay, ok := calendarDate(year, m, day)
			if !ok {
				rec = append(rec, "", "")
				continue
			}
			cur, fc := values(stay)
			rec = append(rec, cur, fc)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
