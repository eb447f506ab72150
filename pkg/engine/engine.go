// Package engine exposes the quote calculations behind plain functions
// so callers do not need to wire resolvers, calculators and solvers
// themselves.
package engine

import (
	"context"
	"time"

	"github.com/iwvelando/quote-engine/pkg/lease"
	"github.com/iwvelando/quote-engine/pkg/loans"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"go.uber.org/zap"
)

// CalculateLeaseQuote prices req against table with the payment schedule
// starting in the current month.
func CalculateLeaseQuote(logger *zap.Logger, req lease.Request, table []rateband.RateBand) (lease.Result, error) {
	return CalculateLeaseQuoteWithFixedTime(logger, req, table, time.Now())
}

// CalculateLeaseQuoteWithFixedTime is CalculateLeaseQuote with the schedule
// anchored on now.
func CalculateLeaseQuoteWithFixedTime(logger *zap.Logger, req lease.Request, table []rateband.RateBand, now time.Time) (lease.Result, error) {
	resolver := rateband.NewResolver(logger, table)
	return lease.NewCalculator(logger, resolver).CalculateWithFixedTime(req, now)
}

// SolveLoanAmortization returns the amortization schedule for p.
func SolveLoanAmortization(logger *zap.Logger, p loans.Parameters) ([]loans.Period, error) {
	return loans.NewSolver(logger).Solve(p)
}

// SolveLoanAmortizationWithStats is SolveLoanAmortization plus convergence
// details. The solve stops early when ctx is done.
func SolveLoanAmortizationWithStats(ctx context.Context, logger *zap.Logger, p loans.Parameters) ([]loans.Period, loans.Stats, error) {
	return loans.NewSolver(logger).SolveWithStatsContext(ctx, p)
}
