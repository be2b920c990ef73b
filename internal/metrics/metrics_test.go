package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordForecast(OutcomeOK)
	r.RecordForecast(OutcomeOK)
	r.RecordForecast(OutcomeInvalid)
	r.RecordBacktest(40, 2)
	r.RecordBacktest(10, 0)
	r.RecordBulk(12, 353)
	r.RecordRatioTable("file", 62)
	r.RecordLatency("forecast", time.Now())

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"forecasts ok", testutil.ToFloat64(r.forecasts.WithLabelValues(OutcomeOK)), 2},
		{"forecasts invalid", testutil.ToFloat64(r.forecasts.WithLabelValues(OutcomeInvalid)), 1},
		{"backtest runs", testutil.ToFloat64(r.backtestRuns), 2},
		{"backtest evaluated", testutil.ToFloat64(r.backtestRows.WithLabelValues("evaluated")), 50},
		{"backtest skipped", testutil.ToFloat64(r.backtestRows.WithLabelValues("skipped")), 2},
		{"bulk forecast", testutil.ToFloat64(r.bulkDates.WithLabelValues("forecast")), 12},
		{"ratio entries", testutil.ToFloat64(r.ratioEntries), 62},
		{"ratio reloads", testutil.ToFloat64(r.ratioReloads.WithLabelValues("file")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	// Two recorders must not collide on registration.
	a := New(nil)
	b := New(nil)
	a.RecordForecast(OutcomeError)
	if got := testutil.ToFloat64(b.forecasts.WithLabelValues(OutcomeError)); got != 0 {
		t.Errorf("expected independent registries, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	r := New(nil)
	r.RecordRatioTable("redis", 10)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "hotel_forecast_ratio_table_entries 10") {
		t.Errorf("expected gauge in exposition, got:\n%s", body)
	}
}
