// Package quotes computes every lease and loan quote in a configuration.
package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/quote-engine/internal/config"
	"github.com/iwvelando/quote-engine/internal/metrics"
	"github.com/iwvelando/quote-engine/pkg/lease"
	"github.com/iwvelando/quote-engine/pkg/loans"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"github.com/iwvelando/quote-engine/pkg/validation"
	"go.uber.org/zap"
)

// Quote is the outcome of one configured lease or loan. Exactly one of Lease
// and Loan is set unless Err is non-nil.
type Quote struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Lease *lease.Result  `json:"lease,omitempty"`
	Loan  []loans.Period `json:"loan,omitempty"`
	Err   error          `json:"-"`
	Error string         `json:"error,omitempty"`
}

func (q *Quote) fail(err error) {
	q.Err = err
	q.Error = err.Error()
}

// Run computes every lease then every loan in conf. Lease schedules start in
// conf.ScheduleStart(now). A quote that cannot be computed carries its error
// and does not stop the batch; Run itself only fails when the band table or
// schedule start cannot be determined.
func Run(ctx context.Context, logger *zap.Logger, conf *config.Configuration, now time.Time) ([]Quote, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	start, err := conf.ScheduleStart(now)
	if err != nil {
		return nil, err
	}

	var bands []rateband.RateBand
	if len(conf.Leases) > 0 {
		bands, err = conf.LoadRateBands(ctx, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load rate bands: %w", err)
		}
	}

	calculator := lease.NewCalculator(logger, rateband.NewResolver(logger, bands))
	solver := loans.NewSolver(logger)

	results := make([]Quote, 0, len(conf.Leases)+len(conf.Loans))

	for _, l := range conf.Leases {
		quote := Quote{ID: uuid.NewString(), Name: l.Name, Kind: metrics.KindLease}
		result, err := quoteLease(calculator, l.Request, start)
		if err != nil {
			quote.fail(fmt.Errorf("lease %q: %w", l.Name, err))
			logger.Warn("failed to quote lease",
				zap.String("op", "quotes.Run"),
				zap.String("id", quote.ID),
				zap.String("name", l.Name),
				zap.Error(err),
			)
		} else {
			quote.Lease = &result
		}
		metrics.ObserveQuote(metrics.KindLease, err)
		results = append(results, quote)
	}

	for _, loan := range conf.Loans {
		quote := Quote{ID: uuid.NewString(), Name: loan.Name, Kind: metrics.KindLoan}
		rows, err := quoteLoan(ctx, solver, loan, conf.Solver)
		if err != nil {
			quote.fail(fmt.Errorf("loan %q: %w", loan.Name, err))
			logger.Warn("failed to amortize loan",
				zap.String("op", "quotes.Run"),
				zap.String("id", quote.ID),
				zap.String("name", loan.Name),
				zap.Error(err),
			)
		} else {
			quote.Loan = rows
		}
		metrics.ObserveQuote(metrics.KindLoan, err)
		results = append(results, quote)
	}

	return results, nil
}

func quoteLease(calculator *lease.Calculator, req lease.Request, start time.Time) (lease.Result, error) {
	if err := validation.ValidateLeaseRequest(req); err != nil {
		return lease.Result{}, err
	}
	return calculator.CalculateWithFixedTime(req, start)
}

func quoteLoan(ctx context.Context, solver *loans.Solver, loan config.Loan, overrides config.SolverConfig) ([]loans.Period, error) {
	p, err := loan.ToParameters(overrides)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateLoanParameters(p); err != nil {
		return nil, err
	}

	rows, stats, err := solver.SolveWithStatsContext(ctx, p)
	if err != nil {
		return nil, err
	}
	metrics.SolverIterations.Observe(float64(stats.Iterations))
	return rows, nil
}
