package loans

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/datetime"
	"github.com/iwvelando/quote-engine/pkg/mathutil"
	"go.uber.org/zap"
)

// Parameters describe a loan with at most one lump prepayment.
//
// Periods before PrincipalAmortizationStartPeriod form the interest-tracking
// regime: the balance is not amortized and any interest the payment does not
// cover is carried as unpaid interest. From PrincipalAmortizationStartPeriod
// on, a level payment amortizes the balance.
type Parameters struct {
	Principal                        float64   `json:"principal"`
	AnnualInterestRatePercent        float64   `json:"annualInterestRatePercent"`
	StartDate                        time.Time `json:"startDate"`
	TotalPeriods                     int       `json:"totalPeriods"`
	PrepaymentAmount                 float64   `json:"prepaymentAmount"`
	PrepaymentPeriod                 int       `json:"prepaymentPeriod"`
	PrincipalAmortizationStartPeriod int       `json:"principalAmortizationStartPeriod"`
	ConvergenceStep                  float64   `json:"convergenceStep,omitempty"`
	MaxIterations                    int       `json:"maxIterations,omitempty"`
	Tolerance                        float64   `json:"tolerance,omitempty"`
}

// WithDefaults fills in zero-valued solver settings.
func (p Parameters) WithDefaults() Parameters {
	if p.ConvergenceStep <= 0 {
		p.ConvergenceStep = constants.DefaultConvergenceStep
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = constants.DefaultMaxIterations
	}
	if p.Tolerance <= 0 {
		p.Tolerance = constants.DefaultSolverTolerance
	}
	if p.PrincipalAmortizationStartPeriod < 1 {
		p.PrincipalAmortizationStartPeriod = 1
	}
	return p
}

// Period is one row of an amortization schedule. Row 0 is the disbursement.
type Period struct {
	Period                   int       `json:"period"`
	PaymentDueDate           time.Time `json:"paymentDueDate"`
	DaysInPeriod             int       `json:"daysInPeriod"`
	DaysInYear               int       `json:"daysInYear"`
	StartingBalance          float64   `json:"startingBalance"`
	MonthlyPayment           float64   `json:"monthlyPayment"`
	InterestComponent        float64   `json:"interestComponent"`
	PrincipleComponent       float64   `json:"principleComponent"`
	EndingBalance            float64   `json:"endingBalance"`
	PrePaymentAmount         float64   `json:"prePaymentAmount"`
	UnpaidInterestForPeriod  float64   `json:"unpaidInterestForPeriod"`
	UnpaidInterestCumulative float64   `json:"unpaidInterestCumulative"`
	AdjustedMonthlyPayment   float64   `json:"adjustedMonthlyPayment"`
}

// Simulation is one pass of the schedule for fixed payment guesses.
type Simulation struct {
	Periods []Period
	// PrePaymentPeriodInterestTotal is the unpaid interest tracked across the
	// interest-tracking regime.
	PrePaymentPeriodInterestTotal float64
}

// FinalBalance returns the last row's ending balance.
func (s Simulation) FinalBalance() float64 {
	if len(s.Periods) == 0 {
		return 0
	}
	return s.Periods[len(s.Periods)-1].EndingBalance
}

// Stats describes how a solve converged.
type Stats struct {
	BeforePrepaymentPayment float64
	AfterPrepaymentPayment  float64
	Iterations              int
	// FinalBalance is the last row's ending balance before the true-up.
	FinalBalance float64
}

// Solver builds amortization schedules. It holds no mutable state.
type Solver struct {
	logger *zap.Logger
}

// NewSolver creates a solver.
func NewSolver(logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{logger: logger}
}

// Solve returns the full schedule, TotalPeriods+1 rows including row 0, whose
// final payment is trued up so the last ending balance is zero.
func (s *Solver) Solve(p Parameters) ([]Period, error) {
	return s.SolveContext(context.Background(), p)
}

// SolveContext is Solve with cancellation checked between simulations.
func (s *Solver) SolveContext(ctx context.Context, p Parameters) ([]Period, error) {
	periods, _, err := s.SolveWithStatsContext(ctx, p)
	return periods, err
}

// SolveWithStats is Solve plus convergence details.
func (s *Solver) SolveWithStats(p Parameters) ([]Period, Stats, error) {
	return s.SolveWithStatsContext(context.Background(), p)
}

// SolveWithStatsContext is SolveWithStats with cancellation checked between
// simulations.
func (s *Solver) SolveWithStatsContext(ctx context.Context, p Parameters) ([]Period, Stats, error) {
	p = p.WithDefaults()

	before := CalculateInterestPayment(p.Principal, p.AnnualInterestRatePercent)
	seedTerm := p.TotalPeriods - p.PrincipalAmortizationStartPeriod
	if seedTerm < 1 {
		seedTerm = 1
	}
	seed := CalculateMonthlyPayment(p.Principal-p.PrepaymentAmount, p.AnnualInterestRatePercent, seedTerm)
	if !mathutil.IsFinite(seed) || !mathutil.IsFinite(before) {
		return nil, Stats{}, &NonConvergentError{
			Parameters:  p,
			LastPayment: seed,
			Reason:      "payment seed is not finite",
		}
	}

	first := s.Simulate(p, before, seed)
	if denominator := p.PrincipalAmortizationStartPeriod - constants.AveragingPeriodOffset; denominator > 0 {
		before = first.PrePaymentPeriodInterestTotal / float64(denominator)
	}

	search := &paymentSearch{solver: s, ctx: ctx, p: p, before: before}
	after, sim, err := search.converge(seed)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{
		BeforePrepaymentPayment: before,
		AfterPrepaymentPayment:  after,
		Iterations:              search.iterations,
		FinalBalance:            sim.FinalBalance(),
	}

	periods := sim.Periods
	last := &periods[len(periods)-1]
	last.AdjustedMonthlyPayment = last.MonthlyPayment + last.EndingBalance + last.UnpaidInterestCumulative
	last.EndingBalance = 0

	s.logger.Debug(fmt.Sprintf("converged on payment %.4f after %d iterations", after, search.iterations),
		zap.String("op", "loans.Solve"),
		zap.Float64("beforePrepaymentPayment", before),
		zap.Float64("finalBalance", stats.FinalBalance),
		zap.Float64("finalAdjustedPayment", last.AdjustedMonthlyPayment),
	)

	return periods, stats, nil
}

// paymentSearch finds the after-prepayment payment for one solve. Every
// simulation after the seed counts against MaxIterations.
type paymentSearch struct {
	solver     *Solver
	ctx        context.Context
	p          Parameters
	before     float64
	iterations int
}

func (ps *paymentSearch) simulate(payment float64) (Simulation, error) {
	if ps.iterations >= ps.p.MaxIterations {
		return Simulation{}, ps.nonConvergent(payment, Simulation{}, "iteration cap reached")
	}
	if err := ps.ctx.Err(); err != nil {
		return Simulation{}, fmt.Errorf("loan solve stopped after %d iterations: %w", ps.iterations, err)
	}
	ps.iterations++
	return ps.solver.Simulate(ps.p, ps.before, payment), nil
}

func (ps *paymentSearch) retired(sim Simulation) bool {
	return sim.FinalBalance() <= ps.p.Tolerance
}

func (ps *paymentSearch) nonConvergent(payment float64, sim Simulation, reason string) error {
	return &NonConvergentError{
		Parameters:  ps.p,
		Iterations:  ps.iterations,
		LastPayment: payment,
		LastBalance: sim.FinalBalance(),
		Reason:      reason,
	}
}

// converge brackets the payment starting from seed, moving ConvergenceStep
// and doubling the step each move, then bisects the bracket. The result is a
// payment whose final balance lies in [-TerminalBalancePrecision, Tolerance].
func (ps *paymentSearch) converge(seed float64) (float64, Simulation, error) {
	lo, hi := math.Max(seed, 0), math.Max(seed, 0)
	sim := ps.solver.Simulate(ps.p, ps.before, hi)
	step := ps.p.ConvergenceStep

	if !ps.retired(sim) {
		for !ps.retired(sim) {
			lo = hi
			hi = lo + step
			var err error
			if sim, err = ps.simulate(hi); err != nil {
				return 0, Simulation{}, err
			}
			step *= 2
		}
	} else {
		for {
			if hi <= 0 {
				return 0, Simulation{}, ps.nonConvergent(hi, sim, "no positive payment retires the balance")
			}
			candidate := math.Max(hi-step, 0)
			lower, err := ps.simulate(candidate)
			if err != nil {
				return 0, Simulation{}, err
			}
			if !ps.retired(lower) {
				lo = candidate
				break
			}
			hi, sim = candidate, lower
			step *= 2
		}
	}

	// lo leaves a balance, hi retires it.
	for sim.FinalBalance() < -constants.TerminalBalancePrecision {
		mid := lo + (hi-lo)/2
		if mid <= lo || mid >= hi {
			return 0, Simulation{}, ps.nonConvergent(hi, sim, "payment cannot resolve the final balance to the cent")
		}
		candidate, err := ps.simulate(mid)
		if err != nil {
			return 0, Simulation{}, err
		}
		if ps.retired(candidate) {
			hi, sim = mid, candidate
		} else {
			lo = mid
		}
	}

	return hi, sim, nil
}

// Simulate runs the schedule once with fixed before- and after-prepayment
// payments.
func (s *Solver) Simulate(p Parameters, before, after float64) Simulation {
	p = p.WithDefaults()

	periods := make([]Period, 0, p.TotalPeriods+1)
	periods = append(periods, Period{
		Period:          0,
		PaymentDueDate:  datetime.DueDate(p.StartDate, 0),
		StartingBalance: p.Principal,
		EndingBalance:   p.Principal,
	})

	var (
		unpaidCumulative float64
		trackedInterest  float64
		paymentCounter   = constants.PaymentCounterStart
	)

	for k := 1; k <= p.TotalPeriods; k++ {
		previous := periods[k-1]
		row := Period{
			Period:         k,
			PaymentDueDate: datetime.DueDate(p.StartDate, k),
		}

		if k == p.PrepaymentPeriod {
			row.PrePaymentAmount = p.PrepaymentAmount
		}
		row.StartingBalance = previous.EndingBalance - row.PrePaymentAmount

		anchor := datetime.DueDateForPeriod(p.StartDate.Year(), k-1, p.StartDate.Month())
		row.DaysInPeriod = datetime.DaysInMonth(anchor.Year(), anchor.Month())
		row.DaysInYear = datetime.DaysInYear(anchor.Year())
		row.InterestComponent = AccruedInterest(row.StartingBalance, p.AnnualInterestRatePercent, row.DaysInPeriod, row.DaysInYear)

		paymentCounter++
		if k >= p.PrincipalAmortizationStartPeriod {
			row.MonthlyPayment = after
			row.PrincipleComponent = row.MonthlyPayment - row.InterestComponent
		} else {
			if paymentCounter > 0 {
				row.MonthlyPayment = before
			}
			row.UnpaidInterestForPeriod = row.InterestComponent - row.MonthlyPayment
			unpaidCumulative += row.UnpaidInterestForPeriod
			trackedInterest += row.UnpaidInterestForPeriod
		}

		row.UnpaidInterestCumulative = unpaidCumulative
		row.EndingBalance = row.StartingBalance - row.PrincipleComponent
		row.AdjustedMonthlyPayment = row.MonthlyPayment
		periods = append(periods, row)
	}

	return Simulation{Periods: periods, PrePaymentPeriodInterestTotal: trackedInterest}
}
