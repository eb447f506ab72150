package config

import (
	"fmt"

	"github.com/iwvelando/quote-engine/pkg/datetime"
	"github.com/iwvelando/quote-engine/pkg/loans"
)

// ToParameters converts a configured loan into solver parameters with the
// solver overrides applied.
func (loan Loan) ToParameters(solver SolverConfig) (loans.Parameters, error) {
	startDate, err := datetime.ParseDate(loan.StartDate)
	if err != nil {
		return loans.Parameters{}, fmt.Errorf("loan %q: %w", loan.Name, err)
	}

	amortizationStart := loan.PrincipalAmortizationStartPeriod
	if amortizationStart == 0 {
		amortizationStart = 1
	}

	return loans.Parameters{
		Principal:                        loan.Principal,
		AnnualInterestRatePercent:        loan.AnnualInterestRatePercent,
		StartDate:                        startDate,
		TotalPeriods:                     loan.TotalPeriods,
		PrepaymentAmount:                 loan.PrepaymentAmount,
		PrepaymentPeriod:                 loan.PrepaymentPeriod,
		PrincipalAmortizationStartPeriod: amortizationStart,
		ConvergenceStep:                  solver.ConvergenceStep,
		MaxIterations:                    solver.MaxIterations,
		Tolerance:                        solver.Tolerance,
	}, nil
}
