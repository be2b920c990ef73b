package backtest

import (
	"math"
	"slices"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/stats"
)

// Hit-rate tolerances in occupancy percentage points.
var hitTolerances = [3]float64{3, 5, 10}

// Metrics aggregates forecast errors. Everything but Count is nil when nothing was
// evaluated. Hit rates are percentages.
type Metrics struct {
	Count       int      `json:"count"`
	MAE         *float64 `json:"mae"`
	RMSE        *float64 `json:"rmse"`
	MAPE        *float64 `json:"mape"`
	Bias        *float64 `json:"bias"`
	Within3Pct  *float64 `json:"within_3_pct"`
	Within5Pct  *float64 `json:"within_5_pct"`
	Within10Pct *float64 `json:"within_10_pct"`
}

// DayTypeMetrics is one row of the day type breakdown.
type DayTypeMetrics struct {
	DayType dates.DayType `json:"day_type"`
	Metrics
}

// DaysOutMetrics is one row of the days out breakdown.
type DaysOutMetrics struct {
	DaysOut int `json:"days_out"`
	Metrics
}

// Detail is one evaluated snapshot, rounded for display.
type Detail struct {
	StayDate                   string        `json:"stay_date"`
	DayType                    dates.DayType `json:"day_type"`
	DaysOut                    int           `json:"days_out"`
	CurrentOccupancyPct        float64       `json:"current_occupancy_pct"`
	ActualFinalOccupancyPct    float64       `json:"actual_final_occupancy_pct"`
	PredictedFinalOccupancyPct float64       `json:"predicted_final_occupancy_pct"`
	Error                      float64       `json:"error"`
	AbsError                   float64       `json:"abs_error"`
	SquaredError               float64       `json:"squared_error"`
	APEPct                     *float64      `json:"ape_pct"`
}

// DatasetStats counts rows at each stage of a run.
type DatasetStats struct {
	SourceRows    int     `json:"source_rows"`
	CandidateRows int     `json:"candidate_rows"`
	EvaluatedRows int     `json:"evaluated_rows"`
	SkippedRows   int     `json:"skipped_rows"`
	MinStayDate   *string `json:"min_stay_date"`
	MaxStayDate   *string `json:"max_stay_date"`
}

// Report is the outcome of one backtest run.
type Report struct {
	RunID        string           `json:"run_id"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Summary      Metrics          `json:"summary"`
	ByDayType    []DayTypeMetrics `json:"by_day_type"`
	ByDaysOut    []DaysOutMetrics `json:"by_days_out"`
	Details      []Detail         `json:"details"`
	InputFilters Filters          `json:"input_filters"`
	DatasetStats DatasetStats     `json:"dataset_stats"`
}

// record is one successful evaluation.
type record struct {
	stayDate  time.Time
	dayType   dates.DayType
	daysOut   int
	current   float64
	actual    float64
	predicted float64
	err       float64
}

func (r record) absError() float64 { return math.Abs(r.err) }

// ape is the absolute percentage error as a fraction; ok is false when actual is 0.
func (r record) ape() (float64, bool) {
	if r.actual <= 0 {
		return 0, false
	}
	return r.absError() / r.actual, true
}

func rounded(v float64) *float64 {
	r := stats.Round(v, 4)
	return &r
}

// summarize is shared by the summary and both breakdowns.
func summarize(recs []record) Metrics {
	m := Metrics{Count: len(recs)}
	if len(recs) == 0 {
		return m
	}

	errs := make([]float64, 0, len(recs))
	abs := make([]float64, 0, len(recs))
	sq := make([]float64, 0, len(recs))
	var apes []float64
	var hits [len(hitTolerances)]int
	for _, r := range recs {
		errs = append(errs, r.err)
		abs = append(abs, r.absError())
		sq = append(sq, r.err*r.err)
		if a, ok := r.ape(); ok {
			apes = append(apes, a)
		}
		for i, tol := range hitTolerances {
			if r.absError() <= tol {
				hits[i]++
			}
		}
	}

	n := float64(len(recs))
	m.MAE = rounded(stats.Mean(abs))
	m.RMSE = rounded(math.Sqrt(stats.Mean(sq)))
	m.Bias = rounded(stats.Mean(errs))
	if len(apes) > 0 {
		m.MAPE = rounded(stats.Mean(apes) * 100)
	}
	m.Within3Pct = rounded(float64(hits[0]) / n * 100)
	m.Within5Pct = rounded(float64(hits[1]) / n * 100)
	m.Within10Pct = rounded(float64(hits[2]) / n * 100)
	return m
}

func byDayType(recs []record) []DayTypeMetrics {
	groups := make(map[dates.DayType][]record)
	for _, r := range recs {
		groups[r.dayType] = append(groups[r.dayType], r)
	}
	out := make([]DayTypeMetrics, 0, len(groups))
	for dt, g := range groups {
		out = append(out, DayTypeMetrics{DayType: dt, Metrics: summarize(g)})
	}
	slices.SortFunc(out, func(a, b DayTypeMetrics) int {
		switch {
		case a.DayType < b.DayType:
			return -1
		case a.DayType > b.DayType:
			return 1
		}
		return 0
	})
	return out
}

func byDaysOut(recs []record) []DaysOutMetrics {
	groups := make(map[int][]record)
	for _, r := range recs {
		groups[r.daysOut] = append(groups[r.daysOut], r)
	}
	out := make([]DaysOutMetrics, 0, len(groups))
	for d, g := range groups {
		out = append(out, DaysOutMetrics{DaysOut: d, Metrics: summarize(g)})
	}
	slices.SortFunc(out, func(a, b DaysOutMetrics) int { return a.DaysOut - b.DaysOut })
	return out
}

func details(recs []record, limit int) []Detail {
	n := min(limit, len(recs))
	out := make([]Detail, 0, n)
	for _, r := range recs[:n] {
		d := Detail{
			StayDate:                   dates.Format(r.stayDate, dates.LayoutISO),
			DayType:                    r.dayType,
			DaysOut:                    r.daysOut,
			CurrentOccupancyPct:        stats.Round(r.current, 4),
			ActualFinalOccupancyPct:    stats.Round(r.actual, 4),
			PredictedFinalOccupancyPct: stats.Round(r.predicted, 4),
			Error:                      stats.Round(r.err, 4),
			AbsError:                   stats.Round(r.absError(), 4),
			SquaredError:               stats.Round(r.err*r.err, 4),
		}
		if a, ok := r.ape(); ok {
			d.APEPct = rounded(a * 100)
		}
		out = append(out, d)
	}
	return out
}
