package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/config"
	"hotel-forecast/internal/metrics"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Name and Version identify the server to MCP clients.
const (
	Name    = "hotel-forecast"
	Version = "0.1.0"
)

// Ratio table sources accepted by Reload.
const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

// Server holds the state for the MCP server.
type Server struct {
	cfg      *config.AppConfig
	ratios   *ratios.Holder
	store    *ratios.RedisStore
	recorder *metrics.Recorder
	now      func() time.Time
	sdk      *sdk.Server
}

// NewServer creates a new MCP server over the shared ratio holder. store may be nil when
// Redis is not configured.
func NewServer(cfg *config.AppConfig, holder *ratios.Holder, store *ratios.RedisStore, recorder *metrics.Recorder) *Server {
	if recorder == nil {
		recorder = metrics.New(nil)
	}
	s := &Server{
		cfg:      cfg,
		ratios:   holder,
		store:    store,
		recorder: recorder,
		now:      time.Now,
		sdk:      sdk.NewServer(&sdk.Implementation{Name: Name, Version: Version}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the MCP protocol over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", Version).Int("ratio_entries", s.ratios.Table().Len()).Msg("MCP server listening on stdio")
	return s.sdk.Run(ctx, &sdk.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

// Reload reads the ratio table from source and swaps it in.
func (s *Server) Reload(ctx context.Context, source string) (ratios.Loaded, error) {
	minSample := s.cfg.Engine.Model.MinSampleSize
	var (
		table *ratios.Table
		label string
		err   error
	)
	switch source {
	case SourceFile, "":
		table, err = ratios.LoadTableFile(s.cfg.RatioTablePath, minSample)
		label = s.cfg.RatioTablePath
		source = SourceFile
	case SourceRedis:
		if s.store == nil {
			return ratios.Loaded{}, errors.New("redis is not configured (set REDIS_ADDR)")
		}
		table, err = s.store.Fetch(ctx, minSample)
		label = "redis:" + s.store.Key()
	default:
		return ratios.Loaded{}, validation.Errorf("source", "ERR_ONEOF", "source must be one of: file, redis")
	}
	if err != nil {
		return ratios.Loaded{}, err
	}

	s.ratios.Swap(table, label)
	s.recorder.RecordRatioTable(source, table.Len())
	log.Info().Str("source", label).Int("entries", table.Len()).Msg("Ratio table loaded")
	return s.ratios.Current(), nil
}

func (s *Server) formatResult(data any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// textResult encodes data for tool; a payload that cannot be encoded becomes a tool error.
func (s *Server) textResult(tool string, data any) *sdk.CallToolResult {
	text, err := s.formatResult(data)
	if err != nil {
		return s.errorResult(tool, fmt.Errorf("failed to encode result: %w", err))
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

// errorResult reports err to the client as a tool error; invalid input lists every field.
func (s *Server) errorResult(tool string, err error) *sdk.CallToolResult {
	log.Warn().Err(err).Str("tool", tool).Msg("Tool call failed")

	body := map[string]any{"error": err.Error()}
	var errs validation.Errors
	var fe *validation.FieldError
	var missing *aggregate.MissingColumnsError
	switch {
	case errors.As(err, &errs):
		body["error"] = "invalid input"
		body["fields"] = errs
	case errors.As(err, &fe):
		body["error"] = "invalid input"
		body["fields"] = []*validation.FieldError{fe}
	case errors.As(err, &missing):
		body["missing_columns"] = missing.Columns
	}
	text, encErr := s.formatResult(body)
	if encErr != nil {
		text = err.Error()
	}
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

// noTableError explains how to get a table loaded.
func (s *Server) noTableError() error {
	return fmt.Errorf("no completion ratio table loaded: run 'hotel-forecast build-model' or call reload_ratios (looked in %s)", s.cfg.RatioTablePath)
}
