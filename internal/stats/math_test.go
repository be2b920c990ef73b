package stats

import (
	"math"
	"testing"
)

func TestFinite(t *testing.T) {
	if !Finite(0) || !Finite(-12.5) {
		t.Errorf("expected ordinary numbers to be finite")
	}
	if Finite(math.NaN()) || Finite(math.Inf(1)) || Finite(math.Inf(-1)) {
		t.Errorf("expected NaN and infinities to be rejected")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		places   int
		expected float64
	}{
		{"TwoPlaces", 66.666666, 2, 66.67},
		{"FourPlaces", 0.123456, 4, 0.1235},
		{"Negative", -1.23456, 2, -1.23},
		{"Zero", 0, 4, 0},
		{"Whole", 62, 2, 62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.value, tt.places); got != tt.expected {
				t.Errorf("Round() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"Empty", nil, Summary{}},
		{"SingleItem", []float64{0.5}, Summary{Count: 1, Mean: 0.5, StdDev: 0, Min: 0.5, Max: 0.5}},
		{"Pair", []float64{0.4, 0.6}, Summary{Count: 2, Mean: 0.5, StdDev: math.Sqrt(0.02), Min: 0.4, Max: 0.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			if got.Count != tt.want.Count || got.Min != tt.want.Min || got.Max != tt.want.Max {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
			if math.Abs(got.Mean-tt.want.Mean) > 1e-12 || math.Abs(got.StdDev-tt.want.StdDev) > 1e-12 {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
