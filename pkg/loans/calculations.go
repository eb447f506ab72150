// Package loans provides loan payment formulas and the two-phase amortization
// solver with a single lump prepayment.
package loans

import (
	"math"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/mathutil"
)

// MonthlyRate converts an annual percentage rate into a nominal monthly rate.
func MonthlyRate(annualInterestRatePercent float64) float64 {
	return annualInterestRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// closed-form annuity formula P * r(1+r)^n / ((1+r)^n - 1).
func CalculateMonthlyPayment(principal, annualInterestRatePercent float64, termMonths int) float64 {
	if annualInterestRatePercent == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := MonthlyRate(annualInterestRatePercent)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates one month of interest at the nominal
// monthly rate.
func CalculateInterestPayment(remainingPrincipal, annualInterestRatePercent float64) float64 {
	return remainingPrincipal * MonthlyRate(annualInterestRatePercent)
}

// AccruedInterest applies the actual/actual day-count convention: the true
// number of days in the period over the true number of days in the year.
func AccruedInterest(balance, annualInterestRatePercent float64, daysInPeriod, daysInYear int) float64 {
	return balance * float64(daysInPeriod) * mathutil.PercentToRate(annualInterestRatePercent) / float64(daysInYear)
}
