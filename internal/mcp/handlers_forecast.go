package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/bulk"
	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/forecast"
	"hotel-forecast/internal/metrics"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"
	"hotel-forecast/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetOptions(_ context.Context, _ *sdk.CallToolRequest, _ emptyArgs) (*sdk.CallToolResult, any, error) {
	return s.textResult("get_options", WrapResponse(forecast.Options(s.cfg.Engine.Forecast), nil, nil)), nil, nil
}

func (s *Server) handleForecastAndPrice(ctx context.Context, _ *sdk.CallToolRequest, req forecast.Request) (*sdk.CallToolResult, any, error) {
	defer s.recorder.RecordLatency("forecast", time.Now())

	table := s.ratios.Table()
	if table == nil {
		s.recorder.RecordForecast(metrics.OutcomeError)
		return s.errorResult("forecast_and_price", s.noTableError()), nil, nil
	}

	out, err := forecast.ForecastAndPrice(ctx, req, table, s.cfg.Engine.Forecast, s.now())
	if err != nil {
		s.recorder.RecordForecast(outcomeOf(err))
		return s.errorResult("forecast_and_price", err), nil, nil
	}
	s.recorder.RecordForecast(metrics.OutcomeOK)

	var guidance []string
	if out.ConfidenceLevel == ratios.Low {
		guidance = append(guidance, fmt.Sprintf("Only %d historical samples back the %s ratio at %d days out; treat the forecast as indicative.",
			out.SampleCount, out.DayType, out.DaysOut))
	}
	if out.ForecastCapped {
		guidance = append(guidance, "The forecast exceeds 100%: current bookings are ahead of the historical pace for this date.")
	}
	return s.textResult("forecast_and_price", WrapResponse(out, guidance, nil)), nil, nil
}

// outcomeOf classifies a failed forecast for metrics.
func outcomeOf(err error) string {
	if validation.Is(err) || forecast.IsForecastError(err) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

type bulkResponse struct {
	*bulk.Result
	FilledGrid string `json:"filled_grid_csv"`
}

func (s *Server) handleBulkForecast(ctx context.Context, _ *sdk.CallToolRequest, args bulkArgs) (*sdk.CallToolResult, any, error) {
	defer s.recorder.RecordLatency("bulk", time.Now())

	table := s.ratios.Table()
	if table == nil {
		return s.errorResult("bulk_forecast", s.noTableError()), nil, nil
	}

	grid, err := bulk.ReadGrid(strings.NewReader(args.Content))
	if err != nil {
		return s.errorResult("bulk_forecast", err), nil, nil
	}
	res, err := bulk.Run(ctx, grid, table, s.cfg.Engine.Forecast)
	if err != nil {
		return s.errorResult("bulk_forecast", err), nil, nil
	}
	skipped := res.Skipped.Past + res.Skipped.BeyondWindow + res.Skipped.NoOccupancy + res.Skipped.Failed
	s.recorder.RecordBulk(len(res.Forecasts), skipped)

	var buf bytes.Buffer
	if err := bulk.WriteGrid(&buf, grid, res); err != nil {
		return s.errorResult("bulk_forecast", err), nil, nil
	}

	var guidance []string
	if len(res.Forecasts) == 0 {
		guidance = append(guidance, fmt.Sprintf("No dates between %s and %d days later carry bookings; check the upload date row.",
			dates.Format(res.UploadDate, dates.LayoutISO), s.cfg.Engine.Forecast.MaxDaysOut))
	}
	var vis map[string]string
	if s.cfg.EnableMermaidCharts {
		vis = map[string]string{"forecast_chart": visuals.GenerateBulkForecastChart(res)}
	}
	return s.textResult("bulk_forecast", WrapResponse(bulkResponse{Result: res, FilledGrid: buf.String()}, guidance, vis)), nil, nil
}

type templates struct {
	BulkGrid       string `json:"bulk_forecast_csv"`
	UploadBookings string `json:"uploaded_backtest_csv"`
}

func (s *Server) handleGetTemplates(_ context.Context, _ *sdk.CallToolRequest, _ emptyArgs) (*sdk.CallToolResult, any, error) {
	var grid, upload bytes.Buffer
	err := errors.Join(
		bulk.WriteTemplate(&grid, dates.Civil(s.now())),
		aggregate.WriteUploadTemplate(&upload),
	)
	if err != nil {
		return s.errorResult("get_templates", err), nil, nil
	}
	return s.textResult("get_templates", WrapResponse(templates{BulkGrid: grid.String(), UploadBookings: upload.String()}, nil, nil)), nil, nil
}
