package ratios

import (
	"fmt"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/stats"

	"github.com/rs/zerolog/log"
)

// BuildConfig tunes model building.
type BuildConfig struct {
	MinSampleSize int     `yaml:"min_sample_size"`
	OutlierFilter bool    `yaml:"outlier_filter"`
	OutlierMin    float64 `yaml:"outlier_min"`
	OutlierMax    float64 `yaml:"outlier_max"`
}

// DefaultBuildConfig returns the standard calibration settings.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		MinSampleSize: 100,
		OutlierFilter: true,
		OutlierMin:    0.0,
		OutlierMax:    1.05,
	}
}

// Validate reports inconsistent settings.
func (c BuildConfig) Validate() error {
	if c.MinSampleSize < 1 {
		return fmt.Errorf("model.min_sample_size must be at least 1, got %d", c.MinSampleSize)
	}
	if c.OutlierFilter && c.OutlierMin > c.OutlierMax {
		return fmt.Errorf("model.outlier_min (%v) must not exceed model.outlier_max (%v)", c.OutlierMin, c.OutlierMax)
	}
	return nil
}

// BuildReport summarises a model build.
type BuildReport struct {
	InputRows       int `json:"input_rows"`
	OutliersRemoved int `json:"outliers_removed"`
	NonFinite       int `json:"non_finite_rows"`
	Groups          int `json:"groups"`
	HighConfidence  int `json:"high_confidence_groups"`
	LowConfidence   int `json:"low_confidence_groups"`
	MinSampleSize   int `json:"min_sample_size"`
	LargestGroup    int `json:"largest_group"`
}

// Build turns snapshots into a completion-ratio table: per-row ratio, optional outlier
// filter, then mean/count/std/min/max per (day type, days out), rounded to 4 places.
func Build(rows []aggregate.Snapshot, cfg BuildConfig) (*Table, BuildReport, error) {
	rep := BuildReport{InputRows: len(rows), MinSampleSize: cfg.MinSampleSize}
	if err := cfg.Validate(); err != nil {
		return nil, rep, err
	}

	groups := make(map[Key][]float64)
	for _, r := range rows {
		ratio := 0.0
		if r.Final != 0 {
			ratio = r.Current / r.Final
		}
		if !stats.Finite(ratio) {
			rep.NonFinite++
			continue
		}
		if cfg.OutlierFilter && (ratio < cfg.OutlierMin || ratio > cfg.OutlierMax) {
			rep.OutliersRemoved++
			continue
		}
		k := Key{r.DayType, r.DaysOut}
		groups[k] = append(groups[k], ratio)
	}
	if len(groups) == 0 {
		return nil, rep, &aggregate.EmptyDatasetError{Reason: "no snapshot rows left to calibrate"}
	}

	entries := make([]Entry, 0, len(groups))
	for k, ratios := range groups {
		s := stats.Summarize(ratios)
		e := Entry{
			DayType:            k.DayType,
			DaysOut:            k.DaysOut,
			AvgCompletionRatio: stats.Round(s.Mean, 4),
			SampleCount:        s.Count,
			StdDeviation:       stats.Round(s.StdDev, 4),
			MinRatio:           stats.Round(s.Min, 4),
			MaxRatio:           stats.Round(s.Max, 4),
			Confidence:         Low,
		}
		if s.Count >= cfg.MinSampleSize {
			e.Confidence = High
			rep.HighConfidence++
		} else {
			rep.LowConfidence++
		}
		if s.Count > rep.LargestGroup {
			rep.LargestGroup = s.Count
		}
		entries = append(entries, e)
	}
	rep.Groups = len(entries)

	log.Info().
		Int("rows", rep.InputRows).
		Int("outliers_removed", rep.OutliersRemoved).
		Int("groups", rep.Groups).
		Int("low_confidence", rep.LowConfidence).
		Msg("Built completion ratio model")
	if rep.LowConfidence > 0 {
		log.Warn().Int("min_sample_size", cfg.MinSampleSize).Msgf("%d groups have fewer samples than required", rep.LowConfidence)
	}

	return NewTable(entries), rep, nil
}
