package backtest

import (
	"context"
	"io"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"
)

// UploadResult is a backtest over raw bookings along with how the upload was cleaned.
type UploadResult struct {
	*Report
	Aggregation aggregate.ReadReport `json:"aggregation"`
}

// RunUpload aggregates a raw booking table read through m into percentage snapshots
// and backtests them. name labels the dataset in the report.
func RunUpload(ctx context.Context, r io.Reader, name string, m aggregate.Mapping, table *ratios.Table, f Filters, opts Options) (*UploadResult, error) {
	if err := validation.Struct(ctx, &m); err != nil {
		return nil, err
	}
	if err := f.Validate(ctx); err != nil {
		return nil, err
	}

	bookings, rep, err := aggregate.ReadBookings(r, m)
	if err != nil {
		return nil, err
	}
	rows, rep, err := aggregate.Upload(bookings, f.rooms(), rep)
	if err != nil {
		return nil, err
	}

	f.DatasetPath = "uploaded:" + name
	report, err := Run(ctx, rows, table, f, opts)
	if err != nil {
		return nil, err
	}
	return &UploadResult{Report: report, Aggregation: rep}, nil
}
