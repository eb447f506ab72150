package mathutil

import (
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0, true},
		{"Negative", -12.5, true},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.input); got != tt.expected {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPercentToRate(t *testing.T) {
	if got := PercentToRate(5); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("PercentToRate(5) = %v, expected 0.05", got)
	}
}

func TestMidpoint(t *testing.T) {
	if got := Midpoint(5, 15); got != 10 {
		t.Errorf("Midpoint(5, 15) = %v, expected 10", got)
	}
	if got := Midpoint(1000, 1400); got != 1200 {
		t.Errorf("Midpoint(1000, 1400) = %v, expected 1200", got)
	}
}
