// Package metrics holds the Prometheus collectors for quote calculations and
// the HTTP API.
package metrics

import (
	"errors"

	"github.com/iwvelando/quote-engine/pkg/loans"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"github.com/iwvelando/quote-engine/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quote kinds used as the "kind" label.
const (
	KindLease = "lease"
	KindLoan  = "loan"
)

var (
	// QuoteCalculations counts computed quotes by kind and outcome.
	QuoteCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_calculations_total",
			Help: "Number of lease and loan quotes computed",
		},
		[]string{"kind", "status"},
	)

	// SolverIterations records how many simulations each loan solve needed.
	SolverIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_solver_iterations",
			Help:    "Payment search iterations per loan amortization solve",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP API requests",
		},
		[]string{"route", "code"},
	)
)

// Status classifies a calculation error into a label value.
func Status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, validation.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, rateband.ErrConfigurationNotFound):
		return "not_found"
	case errors.Is(err, loans.ErrNonConvergent):
		return "non_convergent"
	default:
		return "error"
	}
}

// ObserveQuote counts one quote of kind with the outcome implied by err.
func ObserveQuote(kind string, err error) {
	QuoteCalculations.WithLabelValues(kind, Status(err)).Inc()
}
