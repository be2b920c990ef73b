package visuals

import (
	"fmt"
	"math"
	"strings"

	"hotel-forecast/internal/backtest"
	"hotel-forecast/internal/bulk"
	"hotel-forecast/internal/ratios"
)

// GenerateBookingCurveChart creates a Mermaid xychart-beta of the completion ratio (as % of
// final occupancy) by days out, one line per day type, left to right towards the stay date.
func GenerateBookingCurveChart(table *ratios.Table) string {
	if table.Len() == 0 {
		return ""
	}

	dayTypes := table.DayTypes()
	var labels []string
	lines := make([][]string, len(dayTypes))
	for d := 30; d >= 0; d-- {
		labels = append(labels, fmt.Sprintf("%d", d))
		for i, dt := range dayTypes {
			val := 0.0
			if e, err := table.Lookup(dt, d); err == nil {
				val = e.AvgCompletionRatio * 100
			}
			lines[i] = append(lines[i], fmt.Sprintf("%.1f", val))
		}
	}

	maxY := 100.0
	for _, e := range table.Entries() {
		if e.AvgCompletionRatio*100 > maxY {
			maxY = e.AvgCompletionRatio * 100
		}
	}

	var names []string
	for _, dt := range dayTypes {
		names = append(names, string(dt))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Booking Curve (%s)\"\n", strings.Join(names, " vs ")))
	sb.WriteString(fmt.Sprintf("    x-axis \"Days Out\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%% of Final Occupancy\" 0 --> %d\n", int(math.Ceil(maxY))))
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(l, ", ")))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateBacktestErrorChart creates a Mermaid bar chart of the mean absolute error per days out.
func GenerateBacktestErrorChart(byDaysOut []backtest.DaysOutMetrics) string {
	var labels []string
	var values []string
	maxVal := 0.0

	for _, row := range byDaysOut {
		if row.MAE == nil {
			continue
		}
		labels = append(labels, fmt.Sprintf("%d", row.DaysOut))
		values = append(values, fmt.Sprintf("%.2f", *row.MAE))
		maxVal = math.Max(maxVal, *row.MAE)
	}
	if len(values) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Backtest MAE by Days Out\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis \"Days Out\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"MAE (pts)\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.2)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateHitRatePie creates a Mermaid pie chart of how far forecasts landed from the actual.
func GenerateHitRatePie(summary backtest.Metrics) string {
	if summary.Count == 0 || summary.Within3Pct == nil {
		return ""
	}

	in3 := *summary.Within3Pct
	in5 := *summary.Within5Pct - in3
	in10 := *summary.Within10Pct - *summary.Within5Pct
	beyond := 100 - *summary.Within10Pct

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title Forecast Error Bands\n")
	sb.WriteString(fmt.Sprintf("    \"Within 3 pts\" : %.2f\n", in3))
	sb.WriteString(fmt.Sprintf("    \"3-5 pts\" : %.2f\n", in5))
	sb.WriteString(fmt.Sprintf("    \"5-10 pts\" : %.2f\n", in10))
	sb.WriteString(fmt.Sprintf("    \"Over 10 pts\" : %.2f\n", beyond))
	sb.WriteString("```")
	return sb.String()
}

// GenerateBulkForecastChart creates a Mermaid xychart-beta of current against forecast occupancy
// for every forecast date of a bulk run.
func GenerateBulkForecastChart(res *bulk.Result) string {
	if res == nil || len(res.Forecasts) == 0 {
		return ""
	}

	var labels []string
	var current []string
	var forecast []string
	maxY := 100.0

	for _, f := range res.Forecasts {
		labels = append(labels, fmt.Sprintf("\"%s\"", f.StayDate.Format("Jan02")))
		current = append(current, fmt.Sprintf("%.1f", f.CurrentOccupancy))
		forecast = append(forecast, fmt.Sprintf("%.1f", f.ForecastOccupancyPct))
		maxY = math.Max(maxY, f.ForecastOccupancyPct)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Bulk Forecast (Current vs Forecast)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Occupancy %%\" 0 --> %d\n", int(math.Ceil(maxY))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(current, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(forecast, ", ")))
	sb.WriteString("```")
	return sb.String()
}
