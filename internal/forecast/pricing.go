package forecast

import (
	"fmt"
	"math"

	"hotel-forecast/internal/stats"
)

// DemandSignal classifies the forecast against target.
type DemandSignal string

const (
	HighDemand DemandSignal = "High Demand"
	OnTarget   DemandSignal = "On Target"
	LowDemand  DemandSignal = "Low Demand"
)

// PricingInput carries what the pricing step needs beyond the forecast.
type PricingInput struct {
	TargetOccupancy   float64
	CurrentPrice      float64
	SensitivityFactor float64
	EventLevel        EventLevel
}

// Pricing is a bounded price recommendation.
type Pricing struct {
	TargetOccupancy     float64      `json:"target_occupancy"`
	CurrentADR          float64      `json:"current_adr"`
	OccupancyGap        float64      `json:"occupancy_gap"`
	DemandSignal        DemandSignal `json:"demand_signal"`
	PriceAdjustmentPct  float64      `json:"price_adjustment_pct"`
	RecommendedADR      float64      `json:"recommended_adr"`
	PriceChangeAmount   float64      `json:"price_change_amount"`
	AdjustmentCapped    bool         `json:"adjustment_capped"`
	PriceCapUsed        float64      `json:"price_cap_used"`
	EventPremiumApplied float64      `json:"event_premium_applied"`
	RecommendationText  string       `json:"recommendation_text"`
}

// Price turns the forecast/target gap into a price adjustment of k * gap. The event
// premium is added only when the gap is not negative; the cap widens by the premium on
// event days.
func Price(forecastPct float64, in PricingInput, cfg Config) Pricing {
	gap := forecastPct - in.TargetOccupancy
	threshold := cfg.DemandThreshold

	signal := OnTarget
	switch {
	case gap > threshold:
		signal = HighDemand
	case gap < -threshold:
		signal = LowDemand
	}

	premium := cfg.EventPremiums.For(in.EventLevel)
	adjustment := in.SensitivityFactor * gap
	if in.EventLevel != EventNone && gap >= 0 {
		adjustment += premium
	}

	priceCap := cfg.DefaultPriceCap
	if in.EventLevel != EventNone {
		priceCap += premium
	}

	capped := false
	if adjustment > priceCap {
		adjustment = priceCap
		capped = true
	} else if adjustment < -priceCap {
		adjustment = -priceCap
		capped = true
	}

	recommended := in.CurrentPrice * (1 + adjustment/100)

	var text string
	switch {
	case math.Abs(gap) <= threshold:
		text = fmt.Sprintf("Maintain current price. Forecast is on target (%.1f%% vs %.1f%% target).", forecastPct, in.TargetOccupancy)
	case gap > 0:
		text = fmt.Sprintf("Increase price by %.2f%% to achieve target occupancy of %.1f%%", adjustment, in.TargetOccupancy)
	default:
		text = fmt.Sprintf("Decrease price by %.2f%% to achieve target occupancy of %.1f%%", math.Abs(adjustment), in.TargetOccupancy)
	}
	if capped {
		text += fmt.Sprintf(" (capped at ±%.0f%%)", priceCap)
	}

	applied := 0.0
	if in.EventLevel != EventNone {
		applied = premium
	}

	return Pricing{
		TargetOccupancy:     in.TargetOccupancy,
		CurrentADR:          in.CurrentPrice,
		OccupancyGap:        stats.Round(gap, 2),
		DemandSignal:        signal,
		PriceAdjustmentPct:  stats.Round(adjustment, 2),
		RecommendedADR:      stats.Round(recommended, 2),
		PriceChangeAmount:   stats.Round(recommended-in.CurrentPrice, 2),
		AdjustmentCapped:    capped,
		PriceCapUsed:        priceCap,
		EventPremiumApplied: applied,
		RecommendationText:  text,
	}
}
