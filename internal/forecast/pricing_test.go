package forecast

import (
	"strings"
	"testing"
)

func TestPrice(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		forecast    float64
		in          PricingInput
		wantAdj     float64
		wantCapped  bool
		wantSignal  DemandSignal
		wantCap     float64
		wantPremium float64
		wantText    string
	}{
		{
			name:       "capped increase",
			forecast:   100,
			in:         PricingInput{TargetOccupancy: 50, CurrentPrice: 200, SensitivityFactor: 0.8, EventLevel: EventNone},
			wantAdj:    12,
			wantCapped: true,
			wantSignal: HighDemand,
			wantCap:    12,
			wantText:   "Increase price by 12.00% to achieve target occupancy of 50.0% (capped at ±12%)",
		},
		{
			name:        "event day under target gets no premium",
			forecast:    70,
			in:          PricingInput{TargetOccupancy: 80, CurrentPrice: 200, SensitivityFactor: 0.5, EventLevel: EventMajor},
			wantAdj:     -5,
			wantSignal:  LowDemand,
			wantCap:     32,
			wantPremium: 20,
			wantText:    "Decrease price by 5.00% to achieve target occupancy of 80.0%",
		},
		{
			name:        "event day over target adds premium",
			forecast:    84,
			in:          PricingInput{TargetOccupancy: 80, CurrentPrice: 200, SensitivityFactor: 0.5, EventLevel: EventMinor},
			wantAdj:     12,
			wantSignal:  HighDemand,
			wantCap:     22,
			wantPremium: 10,
			wantText:    "Increase price by 12.00% to achieve target occupancy of 80.0%",
		},
		{
			name:       "on target",
			forecast:   81.5,
			in:         PricingInput{TargetOccupancy: 80, CurrentPrice: 200, SensitivityFactor: 0.3, EventLevel: EventNone},
			wantAdj:    0.45,
			wantSignal: OnTarget,
			wantCap:    12,
			wantText:   "Maintain current price. Forecast is on target (81.5% vs 80.0% target).",
		},
		{
			name:       "capped decrease",
			forecast:   20,
			in:         PricingInput{TargetOccupancy: 90, CurrentPrice: 100, SensitivityFactor: 0.5, EventLevel: EventNone},
			wantAdj:    -12,
			wantCapped: true,
			wantSignal: LowDemand,
			wantCap:    12,
			wantText:   "Decrease price by 12.00% to achieve target occupancy of 90.0% (capped at ±12%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.forecast, tt.in, cfg)
			if got.PriceAdjustmentPct != tt.wantAdj {
				t.Errorf("expected adjustment %v, got %v", tt.wantAdj, got.PriceAdjustmentPct)
			}
			if got.AdjustmentCapped != tt.wantCapped {
				t.Errorf("expected capped=%v, got %v", tt.wantCapped, got.AdjustmentCapped)
			}
			if got.DemandSignal != tt.wantSignal {
				t.Errorf("expected %s, got %s", tt.wantSignal, got.DemandSignal)
			}
			if got.PriceCapUsed != tt.wantCap {
				t.Errorf("expected cap %v, got %v", tt.wantCap, got.PriceCapUsed)
			}
			if got.EventPremiumApplied != tt.wantPremium {
				t.Errorf("expected premium %v, got %v", tt.wantPremium, got.EventPremiumApplied)
			}
			if got.RecommendationText != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, got.RecommendationText)
			}
		})
	}
}

func TestPrice_RecommendedADR(t *testing.T) {
	got := Price(100, PricingInput{TargetOccupancy: 50, CurrentPrice: 280, SensitivityFactor: 0.8, EventLevel: EventNone}, DefaultConfig())
	if got.RecommendedADR != 313.6 {
		t.Errorf("expected 313.6, got %v", got.RecommendedADR)
	}
	if got.PriceChangeAmount != 33.6 {
		t.Errorf("expected 33.6, got %v", got.PriceChangeAmount)
	}
	if got.OccupancyGap != 50 {
		t.Errorf("expected gap 50, got %v", got.OccupancyGap)
	}
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("all five in order", func(t *testing.T) {
		r := Result{DaysOut: 5, ForecastOccupancyPct: 120, ForecastCapped: true, ConfidenceLevel: "low", SampleCount: 12}
		p := Pricing{AdjustmentCapped: true, PriceCapUsed: 32, EventPremiumApplied: 20}
		got := Warnings(20, EventMajor, r, p, cfg)
		if len(got) != 5 {
			t.Fatalf("expected 5 warnings, got %d: %v", len(got), got)
		}
		prefixes := []string{"Low confidence: only 12", "Forecast exceeds 100% (120.0%)", "Price adjustment capped at ±32%", "Event flagged (major)", "Current occupancy very low"}
		for i, p := range prefixes {
			if !strings.HasPrefix(got[i], p) {
				t.Errorf("warning %d: expected prefix %q, got %q", i, p, got[i])
			}
		}
	})

	t.Run("high demand only when not capped", func(t *testing.T) {
		got := Warnings(50, EventNone, Result{DaysOut: 10, ForecastOccupancyPct: 96, ConfidenceLevel: "high"}, Pricing{}, cfg)
		if len(got) != 1 || !strings.HasPrefix(got[0], "Very high demand forecast: 96.0%") {
			t.Errorf("expected a single high-demand warning, got %v", got)
		}

		got = Warnings(50, EventNone, Result{DaysOut: 10, ForecastOccupancyPct: 101, ForecastCapped: true, ConfidenceLevel: "high"}, Pricing{}, cfg)
		if len(got) != 1 || !strings.HasPrefix(got[0], "Forecast exceeds 100%") {
			t.Errorf("expected only the 100%% warning, got %v", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		got := Warnings(50, EventNone, Result{DaysOut: 7, ForecastOccupancyPct: 80, ConfidenceLevel: "high"}, Pricing{}, cfg)
		if len(got) != 0 {
			t.Errorf("expected no warnings, got %v", got)
		}
	})
}
