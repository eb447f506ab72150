// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/quote-engine/pkg/constants"
)

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// PercentToRate converts a percentage such as 5.25 into a rate such as 0.0525.
func PercentToRate(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// Midpoint returns the arithmetic mean of a and b.
func Midpoint(a, b float64) float64 {
	return (a + b) / 2
}
