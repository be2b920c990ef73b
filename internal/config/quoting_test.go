package config

import (
	"testing"

	"github.com/joho/godotenv"
)

// .env values reach Load through godotenv; these are the shapes deployments use.
func TestDotenvValues(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  string
		want string
	}{
		{"single quoted path keeps inner quotes", `RATIO_TABLE_PATH='/srv/hotel data/"march" ratios.csv'`, "RATIO_TABLE_PATH", `/srv/hotel data/"march" ratios.csv`},
		{"double quoted path with spaces", `BACKTEST_DATA_PATH="/srv/hotel data/snapshots.csv"`, "BACKTEST_DATA_PATH", "/srv/hotel data/snapshots.csv"},
		{"redis key with colons", `REDIS_RATIO_KEY=hotel-forecast:ratios:v2`, "REDIS_RATIO_KEY", "hotel-forecast:ratios:v2"},
		{"trailing comment", `METRICS_ADDR=:9464 # prometheus scrape port`, "METRICS_ADDR", ":9464"},
		{"export prefix", `export BACKTEST_WORKERS=4`, "BACKTEST_WORKERS", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := godotenv.Unmarshal(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env[tt.key] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, env[tt.key])
			}
		})
	}
}
