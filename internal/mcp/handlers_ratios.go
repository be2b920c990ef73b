package mcp

import (
	"context"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"
	"hotel-forecast/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ratioTableResponse struct {
	Source   string         `json:"source"`
	LoadedAt time.Time      `json:"loaded_at"`
	Entries  []ratios.Entry `json:"entries"`
}

func (s *Server) handleGetRatioTable(_ context.Context, _ *sdk.CallToolRequest, args ratioTableArgs) (*sdk.CallToolResult, any, error) {
	loaded := s.ratios.Current()
	if loaded.Table == nil {
		return s.errorResult("get_ratio_table", s.noTableError()), nil, nil
	}

	entries := loaded.Table.Entries()
	if args.DayType != "" {
		dt, ok := dates.NormalizeDayType(args.DayType)
		if !ok {
			return s.errorResult("get_ratio_table", validation.Errorf("day_type", "ERR_ONEOF", "day_type must be weekday or weekend")), nil, nil
		}
		entries = loaded.Table.Curve(dt)
	}
	if entries == nil {
		entries = []ratios.Entry{}
	}

	var vis map[string]string
	if s.cfg.EnableMermaidCharts {
		vis = map[string]string{"booking_curve": visuals.GenerateBookingCurveChart(loaded.Table)}
	}
	resp := ratioTableResponse{Source: loaded.Source, LoadedAt: loaded.LoadedAt, Entries: entries}
	return s.textResult("get_ratio_table", WrapResponse(resp, nil, vis)), nil, nil
}

func (s *Server) handleReloadRatios(ctx context.Context, _ *sdk.CallToolRequest, args reloadArgs) (*sdk.CallToolResult, any, error) {
	loaded, err := s.Reload(ctx, args.Source)
	if err != nil {
		return s.errorResult("reload_ratios", err), nil, nil
	}
	return s.textResult("reload_ratios", WrapResponse(map[string]any{
		"source":    loaded.Source,
		"loaded_at": loaded.LoadedAt,
		"entries":   loaded.Table.Len(),
		"day_types": loaded.Table.DayTypes(),
	}, nil, nil)), nil, nil
}

type healthReport struct {
	Status          string          `json:"status"`
	Version         string          `json:"version"`
	RatioEntries    int             `json:"ratio_entries"`
	RatioSource     string          `json:"ratio_source,omitempty"`
	LoadedAt        *time.Time      `json:"loaded_at,omitempty"`
	DayTypes        []dates.DayType `json:"day_types"`
	RedisConfigured bool            `json:"redis_configured"`
	MermaidCharts   bool            `json:"mermaid_charts"`
}

func (s *Server) handleHealth(_ context.Context, _ *sdk.CallToolRequest, _ emptyArgs) (*sdk.CallToolResult, any, error) {
	loaded := s.ratios.Current()
	h := healthReport{
		Status:          "ok",
		Version:         Version,
		RatioEntries:    loaded.Table.Len(),
		RatioSource:     loaded.Source,
		DayTypes:        []dates.DayType{},
		RedisConfigured: s.store != nil,
		MermaidCharts:   s.cfg.EnableMermaidCharts,
	}
	if loaded.Table == nil {
		h.Status = "no_ratio_table"
	} else {
		h.LoadedAt = &loaded.LoadedAt
		h.DayTypes = loaded.Table.DayTypes()
	}
	return s.textResult("health", WrapResponse(h, nil, nil)), nil, nil
}
