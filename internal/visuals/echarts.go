package visuals

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"hotel-forecast/internal/backtest"
	"hotel-forecast/internal/bulk"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/stats"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func baseOptions(page, title, xName, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: page,
			Width:     "1000px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	}
}

// BookingCurveLine builds an HTML line chart of completion ratios by days out per day type.
func BookingCurveLine(table *ratios.Table) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(baseOptions("Booking Curve", "Completion ratio by days out", "days out", "% of final")...)

	var axis []string
	for d := 30; d >= 0; d-- {
		axis = append(axis, strconv.Itoa(d))
	}
	line.SetXAxis(axis)

	for _, dt := range table.DayTypes() {
		data := make([]opts.LineData, 0, len(axis))
		for d := 30; d >= 0; d-- {
			if e, err := table.Lookup(dt, d); err == nil {
				data = append(data, opts.LineData{Value: stats.Round(e.AvgCompletionRatio*100, 1)})
			} else {
				data = append(data, opts.LineData{Value: "-"})
			}
		}
		line.AddSeries(string(dt), data)
	}
	return line
}

// BacktestErrorBar builds an HTML bar chart of MAE and bias per days out.
func BacktestErrorBar(rep *backtest.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions("Backtest", fmt.Sprintf("Backtest %s: error by days out", rep.RunID), "days out", "occupancy pts")...)

	var axis []string
	var mae, bias []opts.BarData
	for _, row := range rep.ByDaysOut {
		axis = append(axis, strconv.Itoa(row.DaysOut))
		mae = append(mae, opts.BarData{Value: deref(row.MAE)})
		bias = append(bias, opts.BarData{Value: deref(row.Bias)})
	}
	bar.SetXAxis(axis).
		AddSeries("MAE", mae).
		AddSeries("Bias", bias)
	return bar
}

// BacktestHitRateBar builds an HTML bar chart of hit rates per day type.
func BacktestHitRateBar(rep *backtest.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions("Backtest", "Hit rate by day type", "day type", "% of forecasts")...)

	var axis []string
	var in3, in5, in10 []opts.BarData
	for _, row := range rep.ByDayType {
		axis = append(axis, string(row.DayType))
		in3 = append(in3, opts.BarData{Value: deref(row.Within3Pct)})
		in5 = append(in5, opts.BarData{Value: deref(row.Within5Pct)})
		in10 = append(in10, opts.BarData{Value: deref(row.Within10Pct)})
	}
	bar.SetXAxis(axis).
		AddSeries("within 3 pts", in3).
		AddSeries("within 5 pts", in5).
		AddSeries("within 10 pts", in10)
	return bar
}

// BulkForecastLine builds an HTML chart of current and forecast occupancy for a bulk run.
func BulkForecastLine(res *bulk.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(baseOptions("Bulk Forecast", "Current vs forecast occupancy", "stay date", "occupancy %")...)

	var axis []string
	var current, forecast []opts.LineData
	for _, f := range res.Forecasts {
		axis = append(axis, f.StayDate.Format("02 Jan"))
		current = append(current, opts.LineData{Value: f.CurrentOccupancy})
		forecast = append(forecast, opts.LineData{Value: f.ForecastOccupancyPct})
	}
	line.SetXAxis(axis).
		AddSeries("current", current).
		AddSeries("forecast", forecast)
	return line
}

// RenderBacktest writes the backtest charts as one HTML page.
func RenderBacktest(w io.Writer, rep *backtest.Report) error {
	page := components.NewPage()
	page.PageTitle = "Backtest " + rep.RunID
	page.AddCharts(BacktestErrorBar(rep), BacktestHitRateBar(rep))
	return page.Render(w)
}

// RenderBookingCurve writes the booking curve chart as HTML.
func RenderBookingCurve(w io.Writer, table *ratios.Table) error {
	return BookingCurveLine(table).Render(w)
}

// RenderBulk writes the bulk forecast chart as HTML.
func RenderBulk(w io.Writer, res *bulk.Result) error {
	return BulkForecastLine(res).Render(w)
}

// WriteHTML renders into path, creating its directory, and returns the absolute path.
func WriteHTML(path string, render func(io.Writer) error) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	if err := render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("render %s: %w", abs, err)
	}
	return abs, f.Close()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

