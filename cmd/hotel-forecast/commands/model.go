package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	mapping aggregate.Mapping

	aggregateInput  string
	aggregateOutput string

	buildInput   string
	buildOutput  string
	buildPublish bool
	buildChart   bool
	openChart    bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate raw bookings into daily occupancy snapshots",
	Long: `Reads one row per booking and writes, for every stay date, the cumulative rooms on
the books at each of 30..0 days out together with the final count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output := aggregateOutput
		if output == "" {
			output = cfg.BacktestDataPath
		}

		bookings, readRep, err := aggregate.ReadBookingsFile(aggregateInput, mapping)
		if err != nil {
			return err
		}
		rows, rep, err := aggregate.Offline(bookings)
		if err != nil {
			return err
		}
		rep.Rows = readRep.Rows
		rep.Unparseable = readRep.Unparseable
		if err := aggregate.WriteSnapshotsFile(output, rows); err != nil {
			return err
		}

		log.Info().Str("output", output).Int("rows", len(rows)).Msg("Snapshots written")
		return printJSON(cmd, map[string]any{"output": output, "report": rep})
	},
}

var buildModelCmd = &cobra.Command{
	Use:   "build-model",
	Short: "Build the completion ratio table from aggregated snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := buildInput
		if input == "" {
			input = cfg.BacktestDataPath
		}
		output := buildOutput
		if output == "" {
			output = cfg.RatioTablePath
		}

		rows, loadRep, err := aggregate.LoadDatasetFile(input)
		if err != nil {
			return err
		}
		if loadRep.Dropped > 0 {
			log.Warn().Int("dropped", loadRep.Dropped).Str("input", input).Msg("Dropped unreadable snapshot rows")
		}

		table, rep, err := ratios.Build(rows, cfg.Engine.Model)
		if err != nil {
			return err
		}
		if err := ratios.SaveTableFile(output, table); err != nil {
			return err
		}
		result := map[string]any{"output": output, "report": rep}

		if buildPublish {
			store := redisStore()
			if store == nil {
				return fmt.Errorf("--publish needs REDIS_ADDR")
			}
			if err := store.Publish(cmd.Context(), table); err != nil {
				return err
			}
			result["published"] = "redis:" + store.Key()
		}

		if buildChart || openChart {
			path, err := visuals.WriteHTML(filepath.Join(cfg.ChartsDir, "booking_curve.html"), func(w io.Writer) error {
				return visuals.RenderBookingCurve(w, table)
			})
			if err != nil {
				return err
			}
			result["chart"] = path
			if openChart {
				if err := browser.OpenFile(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Could not open chart")
				}
			}
		}
		return printJSON(cmd, result)
	},
}

// addMappingFlags binds the raw booking column mapping to cmd.
func addMappingFlags(cmd *cobra.Command) {
	def := aggregate.DefaultMapping()
	cmd.Flags().StringVar(&mapping.StayDateCol, "stay-col", def.StayDateCol, "column holding the stay date")
	cmd.Flags().StringVar(&mapping.BookingDateCol, "booking-col", def.BookingDateCol, "column holding the booking date")
	cmd.Flags().StringVar(&mapping.RoomsPerRowCol, "rooms-col", def.RoomsPerRowCol, "column holding rooms per booking; empty means one room per row")
	cmd.Flags().StringVar(&mapping.BookingIDCol, "id-col", def.BookingIDCol, "column holding the booking id")
	cmd.Flags().StringVar(&mapping.StayDateFormat, "stay-format", "", "strftime format of the stay date, e.g. %d/%m/%Y (default: auto)")
	cmd.Flags().StringVar(&mapping.BookingDateFormat, "booking-format", "", "strftime format of the booking date (default: auto)")
}

func init() {
	aggregateCmd.Flags().StringVarP(&aggregateInput, "input", "i", "", "raw booking CSV")
	aggregateCmd.Flags().StringVarP(&aggregateOutput, "output", "o", "", "snapshot CSV to write (default BACKTEST_DATA_PATH)")
	_ = aggregateCmd.MarkFlagRequired("input")
	addMappingFlags(aggregateCmd)

	buildModelCmd.Flags().StringVarP(&buildInput, "input", "i", "", "snapshot CSV (default BACKTEST_DATA_PATH)")
	buildModelCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "ratio table CSV to write (default RATIO_TABLE_PATH)")
	buildModelCmd.Flags().BoolVar(&buildPublish, "publish", false, "also publish the table to Redis")
	buildModelCmd.Flags().BoolVar(&buildChart, "chart", false, "render the booking curve to HTML")
	buildModelCmd.Flags().BoolVar(&openChart, "open", false, "render the booking curve and open it in the browser")

	rootCmd.AddCommand(aggregateCmd, buildModelCmd)
}
