// Package constants provides shared constants for the quote-engine application.
package constants

import "time"

// DateLayout is the format expected for loan start dates in config files and
// API payloads.
const DateLayout = "2006-01-02"

// MonthLayout is the format used for the optional asOf month and for labels
// in pretty output.
const MonthLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// WattsPerKilowatt scales the per-kW cost delta onto the per-kWh rate.
	WattsPerKilowatt = 1000.0

)

// Loan solver defaults
const (
	// DefaultConvergenceStep is the amount the after-prepayment payment moves
	// between simulations.
	DefaultConvergenceStep = 0.01

	// DefaultMaxIterations bounds the convergence search.
	DefaultMaxIterations = 100000

	// DefaultSolverTolerance is the final balance treated as retired. Anything
	// below half a cent rounds to zero.
	DefaultSolverTolerance = 0.005

	// TerminalBalancePrecision bounds how far below zero the final balance
	// may land before the true-up.
	TerminalBalancePrecision = 0.01

	// PaymentCounterStart models payment in arrears: the first real payment of
	// the interest-tracking regime lands two periods after disbursement.
	PaymentCounterStart = -2

	// AveragingPeriodOffset is subtracted from the amortization start period
	// when re-seeding the before-prepayment payment.
	AveragingPeriodOffset = 2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Rate band sources
const (
	// RateBandSourceFile reads the band table inline from the config file.
	RateBandSourceFile = "file"

	// RateBandSourcePostgres reads the band table from a Postgres database.
	RateBandSourcePostgres = "postgres"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"

	// MaxRequestTotalPeriods caps the term of a loan submitted over HTTP
	// (100 years of monthly payments).
	MaxRequestTotalPeriods = 1200

	// MaxRequestIterations caps the solver iterations an HTTP client may ask for.
	MaxRequestIterations = DefaultMaxIterations

	// MinRequestConvergenceStep is the smallest convergence step an HTTP
	// client may ask for.
	MinRequestConvergenceStep = 0.001

	// LoanSolveTimeout bounds the time one HTTP loan solve may run.
	LoanSolveTimeout = 10 * time.Second
)
