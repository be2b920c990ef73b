package forecast

import (
	"fmt"
	"math"

	"hotel-forecast/internal/aggregate"
)

// EventLevel flags a stay date with special demand.
type EventLevel string

const (
	EventNone  EventLevel = "none"
	EventMinor EventLevel = "minor"
	EventMajor EventLevel = "major"
)

// EventLevels lists the accepted levels.
func EventLevels() []EventLevel {
	return []EventLevel{EventNone, EventMinor, EventMajor}
}

// Valid reports whether l is a known level.
func (l EventLevel) Valid() bool {
	switch l {
	case EventNone, EventMinor, EventMajor:
		return true
	}
	return false
}

// EventPremiums are the extra percentage points added on event days.
type EventPremiums struct {
	Minor float64 `yaml:"minor" json:"minor"`
	Major float64 `yaml:"major" json:"major"`
}

// For returns the premium of level; none is always 0.
func (p EventPremiums) For(level EventLevel) float64 {
	switch level {
	case EventMinor:
		return p.Minor
	case EventMajor:
		return p.Major
	}
	return 0
}

// SensitivityOptions are the allowed gains k translating occupancy gap into price change.
type SensitivityOptions struct {
	Conservative float64 `yaml:"conservative" json:"conservative"`
	Moderate     float64 `yaml:"moderate" json:"moderate"`
	Aggressive   float64 `yaml:"aggressive" json:"aggressive"`
}

// Values returns the gains in conservative, moderate, aggressive order.
func (s SensitivityOptions) Values() []float64 {
	return []float64{s.Conservative, s.Moderate, s.Aggressive}
}

// Allows reports whether k is one of the configured gains.
func (s SensitivityOptions) Allows(k float64) bool {
	for _, v := range s.Values() {
		if math.Abs(v-k) < 1e-9 {
			return true
		}
	}
	return false
}

// Config holds every tunable of the forecast and pricing engine. It is passed by value.
type Config struct {
	DefaultPriceCap        float64            `yaml:"default_price_cap"`
	EventPremiums          EventPremiums      `yaml:"event_premiums"`
	DemandThreshold        float64            `yaml:"demand_threshold"`
	SensitivityOptions     SensitivityOptions `yaml:"sensitivity_options"`
	HighOccupancyThreshold float64            `yaml:"high_occupancy_threshold"`
	ZeroOccDaysThreshold   int                `yaml:"zero_occ_days_threshold"`
	MaxDaysOut             int                `yaml:"max_days_out"`
	LowOccupancyWarning    float64            `yaml:"low_occupancy_warning"`
	LowOccupancyDaysOut    int                `yaml:"low_occupancy_days_out"`
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		DefaultPriceCap:        12.0,
		EventPremiums:          EventPremiums{Minor: 10.0, Major: 20.0},
		DemandThreshold:        2.0,
		SensitivityOptions:     SensitivityOptions{Conservative: 0.3, Moderate: 0.5, Aggressive: 0.8},
		HighOccupancyThreshold: 95.0,
		ZeroOccDaysThreshold:   20,
		MaxDaysOut:             30,
		LowOccupancyWarning:    30.0,
		LowOccupancyDaysOut:    7,
	}
}

// Validate reports settings the engine cannot work with.
func (c Config) Validate() error {
	switch {
	case c.DefaultPriceCap <= 0:
		return fmt.Errorf("forecast.default_price_cap must be positive, got %v", c.DefaultPriceCap)
	case c.EventPremiums.Minor < 0 || c.EventPremiums.Major < 0:
		return fmt.Errorf("forecast.event_premiums must not be negative")
	case c.DemandThreshold < 0:
		return fmt.Errorf("forecast.demand_threshold must not be negative, got %v", c.DemandThreshold)
	case c.MaxDaysOut < 0 || c.MaxDaysOut > aggregate.MaxDaysOut:
		return fmt.Errorf("forecast.max_days_out must be between 0 and %d (the snapshot window), got %d", aggregate.MaxDaysOut, c.MaxDaysOut)
	case c.ZeroOccDaysThreshold < 0:
		return fmt.Errorf("forecast.zero_occ_days_threshold must not be negative, got %d", c.ZeroOccDaysThreshold)
	}
	for _, k := range c.SensitivityOptions.Values() {
		if k <= 0 {
			return fmt.Errorf("forecast.sensitivity_options must be positive, got %v", k)
		}
	}
	return nil
}
