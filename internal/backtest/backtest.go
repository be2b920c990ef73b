package backtest

import (
	"context"
	"runtime"
	"slices"
	"time"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/forecast"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options tunes a run. Workers <= 0 means one per CPU.
type Options struct {
	Engine  forecast.Config
	Workers int
	Now     func() time.Time
}

// outcome is the result slot of one candidate row.
type outcome struct {
	rec     record
	ok      bool
	skipped bool
}

// Run replays the forecast engine over rows as if each snapshot were live on
// stay date minus days out, and scores the forecasts against the final occupancy.
// Rows whose forecast fails with an engine error are skipped and counted; any other
// error aborts the run.
func Run(ctx context.Context, rows []aggregate.Snapshot, table *ratios.Table, f Filters, opts Options) (*Report, error) {
	if err := f.Validate(ctx); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, forecast.ErrNoTable
	}

	match := f.matcher()
	candidates := make([]aggregate.Snapshot, 0, len(rows))
	for _, r := range rows {
		if match(r) {
			candidates = append(candidates, r)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !stats.Finite(s.Current) || !stats.Finite(s.Final) {
				results[i].skipped = true
				return nil
			}
			in := forecast.Input{
				StayDate:         s.StayDate,
				AsOf:             s.StayDate.AddDate(0, 0, -s.DaysOut),
				CurrentOccupancy: s.Current,
				TotalRooms:       f.rooms(),
				EventLevel:       forecast.EventNone,
			}
			res, err := forecast.Occupancy(in, table, opts.Engine)
			if err != nil {
				if forecast.IsForecastError(err) {
					results[i].skipped = true
					return nil
				}
				return err
			}
			results[i] = outcome{
				ok: true,
				rec: record{
					stayDate:  s.StayDate,
					dayType:   s.DayType,
					daysOut:   s.DaysOut,
					current:   s.Current,
					actual:    s.Final,
					predicted: res.ForecastOccupancyPct,
					err:       res.ForecastOccupancyPct - s.Final,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs := make([]record, 0, len(results))
	skipped := 0
	for _, o := range results {
		switch {
		case o.ok:
			recs = append(recs, o.rec)
		case o.skipped:
			skipped++
		}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	rep := &Report{
		RunID:        uuid.NewString(),
		GeneratedAt:  now().UTC(),
		Summary:      summarize(recs),
		ByDayType:    byDayType(recs),
		ByDaysOut:    byDaysOut(recs),
		Details:      []Detail{},
		InputFilters: f,
		DatasetStats: datasetStats(rows, candidates, len(recs), skipped),
	}
	if f.details() {
		rep.Details = details(recs, f.detailLimit())
	}

	log.Info().
		Str("run_id", rep.RunID).
		Str("dataset", f.DatasetPath).
		Int("candidates", len(candidates)).
		Int("evaluated", len(recs)).
		Int("skipped", skipped).
		Msg("Backtest finished")
	return rep, nil
}

func datasetStats(rows, candidates []aggregate.Snapshot, evaluated, skipped int) DatasetStats {
	ds := DatasetStats{
		SourceRows:    len(rows),
		CandidateRows: len(candidates),
		EvaluatedRows: evaluated,
		SkippedRows:   skipped,
	}
	if len(candidates) == 0 {
		return ds
	}
	first := slices.MinFunc(candidates, func(a, b aggregate.Snapshot) int { return a.StayDate.Compare(b.StayDate) })
	last := slices.MaxFunc(candidates, func(a, b aggregate.Snapshot) int { return a.StayDate.Compare(b.StayDate) })
	lo := dates.Format(first.StayDate, dates.LayoutISO)
	hi := dates.Format(last.StayDate, dates.LayoutISO)
	ds.MinStayDate = &lo
	ds.MaxStayDate = &hi
	return ds
}
