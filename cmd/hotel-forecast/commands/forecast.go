package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"hotel-forecast/internal/forecast"

	"github.com/spf13/cobra"
)

var (
	forecastReq  forecast.Request
	forecastFile string
	adr          float64
	target       float64
	forecastSens  float64
	forecastRooms int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast occupancy and recommend a price for one stay date",
	Example: `  hotel-forecast forecast --stay 150326 --occupancy 42 --adr 180 --target 85
  hotel-forecast forecast --request request.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := forecastReq
		if forecastFile != "" {
			var err error
			if req, err = readRequest(cmd, forecastFile); err != nil {
				return err
			}
		} else {
			if cmd.Flags().Changed("adr") {
				req.CurrentADR = &adr
			}
			if cmd.Flags().Changed("target") {
				req.TargetOccupancy = &target
			}
			if cmd.Flags().Changed("sensitivity") {
				req.SensitivityFactor = &forecastSens
			}
			if cmd.Flags().Changed("rooms") {
				req.TotalRooms = &forecastRooms
			}
		}

		table, err := requireTable(cmd.Context())
		if err != nil {
			return err
		}
		out, err := forecast.ForecastAndPrice(cmd.Context(), req, table, cfg.Engine.Forecast, time.Now())
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List accepted event levels, sensitivity factors and price caps",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, forecast.Options(cfg.Engine.Forecast))
	},
}

// readRequest decodes a JSON request from path, or stdin when path is "-".
func readRequest(cmd *cobra.Command, path string) (forecast.Request, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return forecast.Request{}, err
		}
		defer f.Close()
		r = f
	}
	var req forecast.Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return forecast.Request{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func init() {
	f := forecastCmd.Flags()
	f.StringVar(&forecastReq.StayDate, "stay", "", "stay date as DDMMYY")
	f.StringVar(&forecastReq.TodayDate, "today", "", "as-of date as DDMMYY (default today)")
	f.Float64Var(&forecastReq.CurrentOccupancy, "occupancy", 0, "current occupancy percentage 0-100")
	f.Float64Var(&adr, "adr", 0, "current ADR")
	f.Float64Var(&target, "target", 0, "target occupancy percentage")
	f.Float64Var(&forecastSens, "sensitivity", 0.5, "price sensitivity: 0.3, 0.5 or 0.8")
	f.StringVar(&forecastReq.EventLevel, "event", "none", "event level: none, minor or major")
	f.IntVar(&forecastRooms, "rooms", 100, "rooms available for sale")
	f.StringVar(&forecastFile, "request", "", "read the full request as JSON from a file, or - for stdin")
	forecastCmd.MarkFlagsMutuallyExclusive("request", "stay")

	rootCmd.AddCommand(forecastCmd, optionsCmd)
}
