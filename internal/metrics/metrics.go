package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Forecast outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder exposes engine activity as Prometheus metrics.
type Recorder struct {
	forecasts    *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	backtestRows *prometheus.CounterVec
	backtestRuns prometheus.Counter
	bulkDates    *prometheus.CounterVec
	ratioEntries prometheus.Gauge
	ratioReloads *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

// New registers the recorder's collectors on reg. A nil reg uses a fresh private registry.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Recorder{
		forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_forecast_forecasts_total",
				Help: "Total forecast requests by outcome",
			},
			[]string{"outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotel_forecast_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		backtestRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_forecast_backtest_rows_total",
				Help: "Backtest rows by result",
			},
			[]string{"result"},
		),
		backtestRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hotel_forecast_backtest_runs_total",
				Help: "Total completed backtest runs",
			},
		),
		bulkDates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_forecast_bulk_dates_total",
				Help: "Bulk grid dates by result",
			},
			[]string{"result"},
		),
		ratioEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hotel_forecast_ratio_table_entries",
				Help: "Buckets in the loaded completion ratio table",
			},
		),
		ratioReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotel_forecast_ratio_reloads_total",
				Help: "Ratio table loads by source",
			},
			[]string{"source"},
		),
		gatherer: reg,
	}
}

// RecordForecast counts one forecast call.
func (r *Recorder) RecordForecast(outcome string) {
	r.forecasts.WithLabelValues(outcome).Inc()
}

// RecordLatency records operation latency since start.
func (r *Recorder) RecordLatency(op string, start time.Time) {
	r.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordBacktest counts a finished run and its rows.
func (r *Recorder) RecordBacktest(evaluated, skipped int) {
	r.backtestRuns.Inc()
	r.backtestRows.WithLabelValues("evaluated").Add(float64(evaluated))
	r.backtestRows.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordBulk counts bulk dates forecast and skipped.
func (r *Recorder) RecordBulk(forecast, skipped int) {
	r.bulkDates.WithLabelValues("forecast").Add(float64(forecast))
	r.bulkDates.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordRatioTable records a table load from source ("file", "redis", ...).
func (r *Recorder) RecordRatioTable(source string, entries int) {
	r.ratioEntries.Set(float64(entries))
	r.ratioReloads.WithLabelValues(source).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
