package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/backtest"
	"hotel-forecast/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) backtestOptions() backtest.Options {
	return backtest.Options{
		Engine:  s.cfg.Engine.Forecast,
		Workers: s.cfg.BacktestWorkers,
		Now:     s.now,
	}
}

func (s *Server) handleRunBacktest(ctx context.Context, _ *sdk.CallToolRequest, args backtestArgs) (*sdk.CallToolResult, any, error) {
	defer s.recorder.RecordLatency("backtest", time.Now())

	table := s.ratios.Table()
	if table == nil {
		return s.errorResult("run_backtest", s.noTableError()), nil, nil
	}

	f := args.filters()
	if f.DatasetPath == "" {
		f.DatasetPath = s.cfg.BacktestDataPath
	}
	if err := f.Validate(ctx); err != nil {
		return s.errorResult("run_backtest", err), nil, nil
	}
	rows, _, err := aggregate.LoadDatasetFile(f.DatasetPath)
	if err != nil {
		return s.errorResult("run_backtest", err), nil, nil
	}

	report, err := backtest.Run(ctx, rows, table, f, s.backtestOptions())
	if err != nil {
		return s.errorResult("run_backtest", err), nil, nil
	}
	s.recorder.RecordBacktest(report.DatasetStats.EvaluatedRows, report.DatasetStats.SkippedRows)
	return s.textResult("run_backtest", WrapResponse(report, backtestGuidance(report), s.backtestVisuals(report))), nil, nil
}

func (s *Server) handleRunUploadedBacktest(ctx context.Context, _ *sdk.CallToolRequest, args uploadBacktestArgs) (*sdk.CallToolResult, any, error) {
	defer s.recorder.RecordLatency("backtest", time.Now())

	table := s.ratios.Table()
	if table == nil {
		return s.errorResult("run_uploaded_backtest", s.noTableError()), nil, nil
	}

	m := aggregate.DefaultMapping()
	if args.Mapping != nil {
		m = *args.Mapping
	}
	var f backtest.Filters
	if args.Filters != nil {
		f = args.Filters.filters()
	}
	name := args.Filename
	if name == "" {
		name = "bookings.csv"
	}

	res, err := backtest.RunUpload(ctx, strings.NewReader(args.Content), name, m, table, f, s.backtestOptions())
	if err != nil {
		return s.errorResult("run_uploaded_backtest", err), nil, nil
	}
	s.recorder.RecordBacktest(res.DatasetStats.EvaluatedRows, res.DatasetStats.SkippedRows)

	guidance := backtestGuidance(res.Report)
	if n := res.Aggregation.Unparseable + res.Aggregation.NonPositive + res.Aggregation.BookedAfter; n > 0 {
		guidance = append(guidance, fmt.Sprintf("%d of %d booking rows were dropped while aggregating; see aggregation for the reasons.",
			n, res.Aggregation.Rows))
	}
	return s.textResult("run_uploaded_backtest", WrapResponse(res, guidance, s.backtestVisuals(res.Report))), nil, nil
}

func backtestGuidance(r *backtest.Report) []string {
	var out []string
	if r.Summary.Count == 0 {
		out = append(out, "No rows matched the filters; widen the date range, day type or days out window.")
	}
	if r.DatasetStats.SkippedRows > 0 {
		out = append(out, fmt.Sprintf("%d rows were skipped because the engine could not forecast them (missing ratio or empty booking level far out).",
			r.DatasetStats.SkippedRows))
	}
	return out
}

func (s *Server) backtestVisuals(r *backtest.Report) map[string]string {
	if !s.cfg.EnableMermaidCharts || r.Summary.Count == 0 {
		return nil
	}
	return map[string]string{
		"mae_by_days_out": visuals.GenerateBacktestErrorChart(r.ByDaysOut),
		"hit_rates":       visuals.GenerateHitRatePie(r.Summary),
	}
}
