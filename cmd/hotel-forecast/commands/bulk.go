package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"hotel-forecast/internal/bulk"
	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	bulkInput    string
	bulkOutput   string
	bulkTemplate string
	bulkHTML     bool
	bulkOpen     bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Forecast a whole 31x12 occupancy grid",
	Long: `Reads a grid CSV with an 'Upload Date (DD/MM/YY)' row, a 'Date/Month,Jan,Jan_Forecast,...'
header and one row per day of month, forecasts every date up to 30 days after the
upload date and writes the grid back with the _Forecast columns filled.`,
	Example: `  hotel-forecast bulk --template grid.csv
  hotel-forecast bulk -i grid.csv -o grid_forecast.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bulkTemplate != "" {
			return writeFile(bulkTemplate, func(w io.Writer) error {
				return bulk.WriteTemplate(w, time.Now())
			})
		}
		if bulkInput == "" {
			return fmt.Errorf("--input or --template is required")
		}

		in, err := os.Open(bulkInput)
		if err != nil {
			return err
		}
		defer in.Close()
		grid, err := bulk.ReadGrid(in)
		if err != nil {
			return err
		}

		table, err := requireTable(cmd.Context())
		if err != nil {
			return err
		}
		res, err := bulk.Run(cmd.Context(), grid, table, cfg.Engine.Forecast)
		if err != nil {
			return err
		}

		write := func(w io.Writer) error { return bulk.WriteGrid(w, grid, res) }
		if bulkOutput == "" {
			if err := write(cmd.OutOrStdout()); err != nil {
				return err
			}
		} else if err := writeFile(bulkOutput, write); err != nil {
			return err
		}

		if bulkHTML || bulkOpen {
			name := "bulk_" + dates.Format(res.UploadDate, dates.LayoutISO) + ".html"
			path, err := visuals.WriteHTML(filepath.Join(cfg.ChartsDir, name), func(w io.Writer) error {
				return visuals.RenderBulk(w, res)
			})
			if err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("Bulk chart written")
			if bulkOpen {
				if err := browser.OpenFile(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Could not open chart")
				}
			}
		}
		return nil
	},
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	log.Info().Str("path", path).Msg("File written")
	return f.Close()
}

func init() {
	bulkCmd.Flags().StringVarP(&bulkInput, "input", "i", "", "grid CSV to forecast")
	bulkCmd.Flags().StringVarP(&bulkOutput, "output", "o", "", "where to write the filled grid (default stdout)")
	bulkCmd.Flags().StringVar(&bulkTemplate, "template", "", "write an empty grid dated today to this path and exit")
	bulkCmd.Flags().BoolVar(&bulkHTML, "html", false, "render the forecasts to HTML under the charts folder")
	bulkCmd.Flags().BoolVar(&bulkOpen, "open", false, "render the forecasts and open them in the browser")

	rootCmd.AddCommand(bulkCmd)
}
