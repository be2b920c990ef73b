package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("LOGS_FOLDER", filepath.Join(dir, "custom-logs"))
	t.Setenv("BACKTEST_WORKERS", "3")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RatioTablePath != filepath.Join(dir, "completion_ratios.csv") {
		t.Errorf("unexpected ratio table path %s", cfg.RatioTablePath)
	}
	if cfg.BacktestDataPath != filepath.Join(dir, "aggregated_bookings.csv") {
		t.Errorf("unexpected backtest path %s", cfg.BacktestDataPath)
	}
	if cfg.LogDir != filepath.Join(dir, "custom-logs") {
		t.Errorf("expected LOGS_FOLDER to win, got %s", cfg.LogDir)
	}
	if cfg.BacktestWorkers != 3 || !cfg.EnableMermaidCharts {
		t.Errorf("unexpected workers/charts: %d %v", cfg.BacktestWorkers, cfg.EnableMermaidCharts)
	}
	if cfg.RedisRatioKey != DefaultRedisRatioKey {
		t.Errorf("expected default redis key, got %s", cfg.RedisRatioKey)
	}
	if cfg.Engine != DefaultEngineConfig() {
		t.Errorf("expected default engine config without ENGINE_CONFIG")
	}
}

func TestLoad_BadWorkers(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("BACKTEST_WORKERS", "zero")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric BACKTEST_WORKERS")
	}
}

func TestLoad_EngineConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	yml := "forecast:\n  default_price_cap: 15\n  event_premiums:\n    major: 25\nmodel:\n  min_sample_size: 40\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATA_PATH", dir)
	t.Setenv("ENGINE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Forecast.DefaultPriceCap != 15 {
		t.Errorf("expected price cap 15, got %v", cfg.Engine.Forecast.DefaultPriceCap)
	}
	if cfg.Engine.Forecast.EventPremiums.Major != 25 || cfg.Engine.Forecast.EventPremiums.Minor != 10 {
		t.Errorf("expected major 25 and untouched minor 10, got %+v", cfg.Engine.Forecast.EventPremiums)
	}
	if cfg.Engine.Model.MinSampleSize != 40 || !cfg.Engine.Model.OutlierFilter {
		t.Errorf("unexpected model config %+v", cfg.Engine.Model)
	}
}

func TestLoadEngineConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty uses defaults", input: ""},
		{name: "unknown key", input: "forecast:\n  price_cap: 10\n", wantErr: "price_cap"},
		{name: "invalid cap", input: "forecast:\n  default_price_cap: 0\n", wantErr: "default_price_cap"},
		{name: "invalid outlier bounds", input: "model:\n  outlier_min: 2\n  outlier_max: 1\n", wantErr: "outlier_min"},
		{name: "horizon beyond snapshot window", input: "forecast:\n  max_days_out: 40\n", wantErr: "max_days_out"},
		{name: "invalid sample size", input: "model:\n  min_sample_size: 0\n", wantErr: "min_sample_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadEngineConfig(strings.NewReader(tt.input))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg != DefaultEngineConfig() {
					t.Errorf("expected defaults, got %+v", cfg)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
