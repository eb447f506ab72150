package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/lease"
	"github.com/iwvelando/quote-engine/pkg/loans"
	"github.com/iwvelando/quote-engine/pkg/mathutil"
	"github.com/iwvelando/quote-engine/pkg/rateband"
)

// ValidateLeaseRequest rejects requests the lease calculator cannot price.
func ValidateLeaseRequest(req lease.Request) error {
	numbers := map[string]float64{
		"grossLeaseAmount":              req.GrossLeaseAmount,
		"capacityKW":                    req.CapacityKW,
		"productivity":                  req.Productivity,
		"rateEscalatorPercent":          req.RateEscalatorPercent,
		"storageSizeKWh":                req.StorageSizeKWh,
		"monthlyUtilityPaymentBaseline": req.MonthlyUtilityPaymentBaseline,
	}
	for _, field := range sortedKeys(numbers) {
		if !mathutil.IsFinite(numbers[field]) {
			return invalid("%s must be a finite number", field)
		}
	}

	if req.CapacityKW <= 0 {
		return invalid("capacityKW must be positive, got %g", req.CapacityKW)
	}
	if req.GrossLeaseAmount < 0 {
		return invalid("grossLeaseAmount cannot be negative, got %g", req.GrossLeaseAmount)
	}
	if req.Productivity < 0 {
		return invalid("productivity cannot be negative, got %g", req.Productivity)
	}
	if req.LeaseTermYears <= 0 {
		return invalid("leaseTermYears must be positive, got %d", req.LeaseTermYears)
	}
	return nil
}

// ValidateLoanParameters rejects loans the solver cannot amortize.
func ValidateLoanParameters(p loans.Parameters) error {
	numbers := map[string]float64{
		"principal":                 p.Principal,
		"annualInterestRatePercent": p.AnnualInterestRatePercent,
		"prepaymentAmount":          p.PrepaymentAmount,
		"convergenceStep":           p.ConvergenceStep,
		"tolerance":                 p.Tolerance,
	}
	for _, field := range sortedKeys(numbers) {
		if !mathutil.IsFinite(numbers[field]) {
			return invalid("%s must be a finite number", field)
		}
	}

	if p.Principal <= 0 {
		return invalid("principal must be positive, got %g", p.Principal)
	}
	if p.AnnualInterestRatePercent < 0 {
		return invalid("annualInterestRatePercent cannot be negative, got %g", p.AnnualInterestRatePercent)
	}
	if p.StartDate.IsZero() {
		return invalid("startDate is required")
	}
	if p.TotalPeriods <= 0 {
		return invalid("totalPeriods must be positive, got %d", p.TotalPeriods)
	}
	if p.PrepaymentPeriod < 0 || p.PrepaymentPeriod > p.TotalPeriods {
		return invalid("prepaymentPeriod must be within [0, %d], got %d", p.TotalPeriods, p.PrepaymentPeriod)
	}
	if p.PrepaymentAmount < 0 {
		return invalid("prepaymentAmount cannot be negative, got %g", p.PrepaymentAmount)
	}
	if p.PrepaymentAmount > p.Principal {
		return invalid("prepaymentAmount %g exceeds principal %g", p.PrepaymentAmount, p.Principal)
	}
	if p.PrincipalAmortizationStartPeriod < 1 || p.PrincipalAmortizationStartPeriod > p.TotalPeriods {
		return invalid("principalAmortizationStartPeriod must be within [1, %d], got %d",
			p.TotalPeriods, p.PrincipalAmortizationStartPeriod)
	}
	if p.ConvergenceStep < 0 {
		return invalid("convergenceStep cannot be negative, got %g", p.ConvergenceStep)
	}
	if p.MaxIterations < 0 {
		return invalid("maxIterations cannot be negative, got %d", p.MaxIterations)
	}
	if p.Tolerance < 0 {
		return invalid("tolerance cannot be negative, got %g", p.Tolerance)
	}
	return nil
}

// SolverLimits bound the work a caller may request from the solver. Zero
// settings on the parameters fall back to defaults and always pass.
type SolverLimits struct {
	MaxTotalPeriods    int
	MaxIterations      int
	MinConvergenceStep float64
}

// DefaultSolverLimits returns the limits applied to HTTP requests.
func DefaultSolverLimits() SolverLimits {
	return SolverLimits{
		MaxTotalPeriods:    constants.MaxRequestTotalPeriods,
		MaxIterations:      constants.MaxRequestIterations,
		MinConvergenceStep: constants.MinRequestConvergenceStep,
	}
}

// ValidateSolverLimits rejects parameters that would exceed limits.
func ValidateSolverLimits(p loans.Parameters, limits SolverLimits) error {
	if limits.MaxTotalPeriods > 0 && p.TotalPeriods > limits.MaxTotalPeriods {
		return invalid("totalPeriods must be at most %d, got %d", limits.MaxTotalPeriods, p.TotalPeriods)
	}
	if limits.MaxIterations > 0 && p.MaxIterations > limits.MaxIterations {
		return invalid("maxIterations must be at most %d, got %d", limits.MaxIterations, p.MaxIterations)
	}
	if p.ConvergenceStep > 0 && p.ConvergenceStep < limits.MinConvergenceStep {
		return invalid("convergenceStep must be at least %g, got %g", limits.MinConvergenceStep, p.ConvergenceStep)
	}
	return nil
}

// ValidateBandRanges rejects band tables with non-finite or inverted ranges.
func ValidateBandRanges(bands []rateband.RateBand) error {
	for i, band := range bands {
		numbers := map[string]float64{
			"solarSizeMin":             band.SolarSizeMin,
			"solarSizeMax":             band.SolarSizeMax,
			"productivityMin":          band.ProductivityMin,
			"productivityMax":          band.ProductivityMax,
			"storageSizeKWh":           band.StorageSizeKWh,
			"rateEscalatorPercent":     band.RateEscalatorPercent,
			"adjustedInstallCostPerKw": band.AdjustedInstallCostPerKw,
			"rateFactor":               band.RateFactor,
			"ratePerKWh":               band.RatePerKWh,
			"storagePayment":           band.StoragePayment,
		}
		for _, field := range sortedKeys(numbers) {
			if !mathutil.IsFinite(numbers[field]) {
				return invalid("rate band %d %s must be a finite number", i, field)
			}
		}
		if band.SolarSizeMin > band.SolarSizeMax {
			return invalid("rate band %d has inverted solar size range [%g, %g)", i, band.SolarSizeMin, band.SolarSizeMax)
		}
		if band.ProductivityMin > band.ProductivityMax {
			return invalid("rate band %d has inverted productivity range [%g, %g)", i, band.ProductivityMin, band.ProductivityMax)
		}
	}
	return nil
}

// ValidateBands returns warnings for inverted ranges and for bands whose
// regions overlap an earlier band, which the resolver would shadow.
func ValidateBands(bands []rateband.RateBand) []string {
	var warnings []string

	for i, band := range bands {
		if band.SolarSizeMin > band.SolarSizeMax {
			warnings = append(warnings, fmt.Sprintf("Rate band %d has inverted solar size range [%g, %g)",
				i, band.SolarSizeMin, band.SolarSizeMax))
		}
		if band.ProductivityMin > band.ProductivityMax {
			warnings = append(warnings, fmt.Sprintf("Rate band %d has inverted productivity range [%g, %g)",
				i, band.ProductivityMin, band.ProductivityMax))
		}
	}

	for i := range bands {
		for j := i + 1; j < len(bands); j++ {
			if overlaps(bands[i], bands[j]) {
				warnings = append(warnings, fmt.Sprintf("Rate bands %d and %d overlap for program %q; band %d wins",
					i, j, bands[i].UtilityProgramName, i))
			}
		}
	}

	return warnings
}

func overlaps(a, b rateband.RateBand) bool {
	if !a.MatchesExact(b.ExactCriteria()) {
		return false
	}
	return a.SolarSizeMin < b.SolarSizeMax && b.SolarSizeMin < a.SolarSizeMax &&
		a.ProductivityMin < b.ProductivityMax && b.ProductivityMin < a.ProductivityMax
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
