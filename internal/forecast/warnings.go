package forecast

import (
	"fmt"

	"hotel-forecast/internal/ratios"
)

// Warnings lists the caveats of a forecast and its pricing, in a fixed order.
func Warnings(currentOccupancy float64, level EventLevel, r Result, p Pricing, cfg Config) []string {
	var out []string

	if r.ConfidenceLevel == ratios.Low {
		out = append(out, fmt.Sprintf("Low confidence: only %d historical samples available", r.SampleCount))
	}

	// the 100% and high-demand warnings never fire together
	if r.ForecastCapped {
		out = append(out, fmt.Sprintf("Forecast exceeds 100%% (%.1f%%) - very high demand expected", r.ForecastOccupancyPct))
	} else if r.ForecastOccupancyPct >= cfg.HighOccupancyThreshold {
		out = append(out, fmt.Sprintf("Very high demand forecast: %.1f%% - consider aggressive pricing", r.ForecastOccupancyPct))
	}

	if p.AdjustmentCapped {
		out = append(out, fmt.Sprintf("Price adjustment capped at ±%.0f%%", p.PriceCapUsed))
	}

	if level != EventNone {
		out = append(out, fmt.Sprintf("Event flagged (%s): using weekend completion ratios with +%.0f%% premium", level, p.EventPremiumApplied))
	}

	if r.DaysOut <= cfg.LowOccupancyDaysOut && currentOccupancy < cfg.LowOccupancyWarning {
		out = append(out, "Current occupancy very low with only 1 week remaining - forecast may be unreliable")
	}

	return out
}
