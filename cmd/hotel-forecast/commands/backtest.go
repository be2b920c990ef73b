package commands

import (
	"io"
	"os"
	"path/filepath"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/backtest"
	"hotel-forecast/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	filters      backtest.Filters
	daysOutMax   int
	totalRooms   int
	detailLimit  int
	noDetails    bool
	uploadPath   string
	backtestHTML bool
	backtestOpen bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the forecast engine over historical snapshots and report accuracy",
	Example: `  hotel-forecast backtest --start 2025-01-01 --end 2025-12-31 --day-type weekend
  hotel-forecast backtest --upload bookings.csv --stay-col night --booking-col created`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := filters
		if cmd.Flags().Changed("days-out-max") {
			f.DaysOutMax = &daysOutMax
		}
		if cmd.Flags().Changed("rooms") {
			f.TotalRooms = &totalRooms
		}
		if cmd.Flags().Changed("detail-limit") {
			f.DetailLimit = &detailLimit
		}
		if noDetails {
			include := false
			f.IncludeDetails = &include
		}

		table, err := requireTable(cmd.Context())
		if err != nil {
			return err
		}
		opts := backtest.Options{Engine: cfg.Engine.Forecast, Workers: cfg.BacktestWorkers}

		var (
			report *backtest.Report
			result any
		)
		if uploadPath != "" {
			file, err := os.Open(uploadPath)
			if err != nil {
				return err
			}
			defer file.Close()
			res, err := backtest.RunUpload(cmd.Context(), file, filepath.Base(uploadPath), mapping, table, f, opts)
			if err != nil {
				return err
			}
			report, result = res.Report, res
		} else {
			if f.DatasetPath == "" {
				f.DatasetPath = cfg.BacktestDataPath
			}
			rows, _, err := aggregate.LoadDatasetFile(f.DatasetPath)
			if err != nil {
				return err
			}
			if report, err = backtest.Run(cmd.Context(), rows, table, f, opts); err != nil {
				return err
			}
			result = report
		}

		if backtestHTML || backtestOpen {
			path, err := visuals.WriteHTML(filepath.Join(cfg.ChartsDir, "backtest_"+report.RunID+".html"), func(w io.Writer) error {
				return visuals.RenderBacktest(w, report)
			})
			if err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("Backtest charts written")
			if backtestOpen {
				if err := browser.OpenFile(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Could not open charts")
				}
			}
		}
		return printJSON(cmd, result)
	},
}

func init() {
	f := backtestCmd.Flags()
	f.IntVar(&totalRooms, "rooms", 100, "rooms available for sale")
	f.StringVar(&filters.StartDate, "start", "", "first stay date, YYYY-MM-DD")
	f.StringVar(&filters.EndDate, "end", "", "last stay date, YYYY-MM-DD")
	f.StringVar(&filters.DayType, "day-type", "all", "all, weekday or weekend")
	f.IntVar(&filters.DaysOutMin, "days-out-min", 0, "smallest days out to evaluate")
	f.IntVar(&daysOutMax, "days-out-max", 30, "largest days out to evaluate")
	f.IntVar(&detailLimit, "detail-limit", 500, "maximum per-row details")
	f.BoolVar(&noDetails, "no-details", false, "omit per-row details")
	f.StringVar(&filters.DatasetPath, "dataset", "", "snapshot CSV (default BACKTEST_DATA_PATH)")
	f.StringVar(&uploadPath, "upload", "", "backtest raw bookings from this CSV instead of the snapshot dataset")
	f.BoolVar(&backtestHTML, "html", false, "render accuracy charts to HTML under the charts folder")
	f.BoolVar(&backtestOpen, "open", false, "render accuracy charts and open them in the browser")
	backtestCmd.MarkFlagsMutuallyExclusive("upload", "dataset")
	addMappingFlags(backtestCmd)

	rootCmd.AddCommand(backtestCmd)
}
