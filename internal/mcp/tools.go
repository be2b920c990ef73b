package mcp

import (
	"fmt"

	"hotel-forecast/internal/aggregate"
	"hotel-forecast/internal/backtest"
	"hotel-forecast/internal/forecast"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// emptyArgs is the input of tools without parameters.
type emptyArgs struct{}

// backtestArgs mirrors backtest.Filters with every field optional.
type backtestArgs struct {
	TotalRooms     *int   `json:"total_rooms_available,omitempty" jsonschema:"rooms available for sale, default 100"`
	StartDate      string `json:"start_date,omitempty" jsonschema:"first stay date to include, YYYY-MM-DD"`
	EndDate        string `json:"end_date,omitempty" jsonschema:"last stay date to include, YYYY-MM-DD"`
	DayType        string `json:"day_type,omitempty" jsonschema:"all, weekday or weekend (default all)"`
	DaysOutMin     int    `json:"days_out_min,omitempty" jsonschema:"smallest days out to include, 0-30"`
	DaysOutMax     *int   `json:"days_out_max,omitempty" jsonschema:"largest days out to include, 0-30 (default 30)"`
	IncludeDetails *bool  `json:"include_details,omitempty" jsonschema:"return per-row details (default true)"`
	DetailLimit    *int   `json:"detail_limit,omitempty" jsonschema:"maximum detail rows (default 500)"`
	DatasetPath    string `json:"dataset_path,omitempty" jsonschema:"snapshot CSV to replay; defaults to BACKTEST_DATA_PATH"`
}

func (a backtestArgs) filters() backtest.Filters {
	return backtest.Filters{
		TotalRooms:     a.TotalRooms,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
		DayType:        a.DayType,
		DaysOutMin:     a.DaysOutMin,
		DaysOutMax:     a.DaysOutMax,
		IncludeDetails: a.IncludeDetails,
		DetailLimit:    a.DetailLimit,
		DatasetPath:    a.DatasetPath,
	}
}

// uploadBacktestArgs carries a raw booking table inline.
type uploadBacktestArgs struct {
	Filename string             `json:"filename,omitempty" jsonschema:"name of the uploaded file, used to label the dataset"`
	Content  string             `json:"content" jsonschema:"raw booking CSV text, one row per booking"`
	Mapping  *aggregate.Mapping `json:"mapping,omitempty" jsonschema:"column mapping; defaults to booking_id, stay_date, booking_date, rooms_booked"`
	Filters  *backtestArgs      `json:"filters,omitempty" jsonschema:"backtest filters"`
}

type bulkArgs struct {
	Content string `json:"content" jsonschema:"bulk grid CSV text: an 'Upload Date (DD/MM/YY)' row, a 'Date/Month, Jan, Jan_Forecast, ...' header and rows 1-31"`
}

type ratioTableArgs struct {
	DayType string `json:"day_type,omitempty" jsonschema:"weekday or weekend; all when empty"`
}

type reloadArgs struct {
	Source string `json:"source,omitempty" jsonschema:"file or redis (default file)"`
}

func addTool[In any](s *Server, name, description string, h sdk.ToolHandlerFor[In, any]) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("input schema for %s: %v", name, err))
	}
	sdk.AddTool(s.sdk, &sdk.Tool{Name: name, Description: description, InputSchema: schema}, h)
}

func (s *Server) registerTools() {
	addTool[emptyArgs](s, "get_options",
		"List the accepted event levels, sensitivity factors, default price cap and event premiums. Call this before forecast_and_price when unsure which values are valid.",
		s.handleGetOptions)

	addTool[forecast.Request](s, "forecast_and_price",
		"Forecast final occupancy for a stay date from the current booking level, then recommend an ADR change towards the target occupancy. "+
			"Dates are DDMMYY. The stay date must be 0-30 days after today_date. Either target_occupancy or monthly_targets, and either current_adr or monthly_adr_budgets, is required. "+
			"Event days use weekend completion ratios and raise the price cap by the event premium.",
		s.handleForecastAndPrice)

	addTool[backtestArgs](s, "run_backtest",
		"Replay the forecast engine over the historical snapshot dataset and report MAE, RMSE, MAPE, bias and hit rates (percent of forecasts within 3/5/10 points), "+
			"overall and by day type and days out. Rows the engine cannot forecast are skipped and counted.",
		s.handleRunBacktest)

	addTool[uploadBacktestArgs](s, "run_uploaded_backtest",
		"Backtest against raw bookings supplied as CSV text (one row per booking). Bookings are aggregated into cumulative occupancy snapshots 0-30 days out before replaying the engine. "+
			"Call get_templates for the expected layout.",
		s.handleRunUploadedBacktest)

	addTool[bulkArgs](s, "bulk_forecast",
		"Forecast every date of a 31x12 occupancy grid (CSV text) as of its upload date. Only dates 0-30 days ahead with bookings are forecast, with 100 rooms and no event. "+
			"Returns the forecasts and the grid with the _Forecast columns filled.",
		s.handleBulkForecast)

	addTool[emptyArgs](s, "get_templates",
		"Return empty CSV templates for run_uploaded_backtest and bulk_forecast.",
		s.handleGetTemplates)

	addTool[ratioTableArgs](s, "get_ratio_table",
		"Show the loaded completion ratio table (booking curve): share of final occupancy on the books at each days out, with sample counts and confidence.",
		s.handleGetRatioTable)

	addTool[reloadArgs](s, "reload_ratios",
		"Reload the completion ratio table from the ratio file or from Redis and swap it in for subsequent calls.",
		s.handleReloadRatios)

	addTool[emptyArgs](s, "health",
		"Report server status, the loaded ratio table size and where it came from.",
		s.handleHealth)
}
