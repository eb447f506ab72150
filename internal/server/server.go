// Package server exposes the quote engine over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/quote-engine/internal/config"
	"github.com/iwvelando/quote-engine/internal/metrics"
	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/datetime"
	"github.com/iwvelando/quote-engine/pkg/engine"
	"github.com/iwvelando/quote-engine/pkg/lease"
	"github.com/iwvelando/quote-engine/pkg/loans"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"github.com/iwvelando/quote-engine/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type handler struct {
	logger       *zap.Logger
	maxBodySize  int64
	version      string
	bands        []rateband.RateBand
	now          func() time.Time
	limits       validation.SolverLimits
	solveTimeout time.Duration
}

// NewHandler constructs the HTTP handler for the quote API. bands is the
// default rate band table for lease requests that do not supply one.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string, bands []rateband.RateBand) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		maxBodySize:  maxBodySize,
		version:      trimmedVersion,
		bands:        bands,
		now:          time.Now,
		limits:       validation.DefaultSolverLimits(),
		solveTimeout: constants.LoanSolveTimeout,
	}

	mux := http.NewServeMux()
	mux.Handle("/api/lease/quote", h.instrument("/api/lease/quote", h.handleLeaseQuote))
	mux.Handle("/api/loan/schedule", h.instrument("/api/loan/schedule", h.handleLoanSchedule))
	mux.Handle("/api/version", h.instrument("/api/version", h.handleVersion))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type leaseQuoteRequest struct {
	Request lease.Request       `json:"request"`
	Bands   []rateband.RateBand `json:"bands,omitempty"`
	AsOf    string              `json:"asOf,omitempty"`
}

type leaseQuoteResponse struct {
	ID       string       `json:"id"`
	Quote    lease.Result `json:"quote"`
	Warnings []string     `json:"warnings,omitempty"`
}

type loanScheduleRequest struct {
	config.Loan
	Solver config.SolverConfig `json:"solver"`
}

type loanScheduleResponse struct {
	ID                      string         `json:"id"`
	BeforePrepaymentPayment float64        `json:"beforePrepaymentPayment"`
	AfterPrepaymentPayment  float64        `json:"afterPrepaymentPayment"`
	Iterations              int            `json:"iterations"`
	Schedule                []loans.Period `json:"schedule"`
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument assigns the request id, counts the request and logs it.
func (h *handler) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := strings.TrimSpace(r.Header.Get(constants.RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		h.logger.Info(fmt.Sprintf("%s %s", r.Method, route),
			zap.String("op", "server.instrument"),
			zap.String("requestId", requestID),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleLeaseQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLeaseQuote"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload leaseQuoteRequest
	if !h.decode(w, r, &payload, op) {
		return
	}

	start := datetime.MonthStart(h.now())
	if payload.AsOf != "" {
		asOf, err := datetime.ParseDate(payload.AsOf)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid asOf: %v", err), op)
			return
		}
		start = datetime.MonthStart(asOf)
	}

	bands := payload.Bands
	var warnings []string
	if len(bands) == 0 {
		bands = h.bands
	} else {
		if err := validation.ValidateBandRanges(bands); err != nil {
			metrics.ObserveQuote(metrics.KindLease, err)
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		warnings = validation.ValidateBands(bands)
		for _, warning := range warnings {
			h.logger.Warn("Rate band warning: "+warning,
				zap.String("op", op),
				zap.String("requestId", w.Header().Get(constants.RequestIDHeader)),
			)
		}
	}

	result, err := h.quoteLease(payload.Request, bands, start)
	metrics.ObserveQuote(metrics.KindLease, err)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, leaseQuoteResponse{
		ID:       w.Header().Get(constants.RequestIDHeader),
		Quote:    result,
		Warnings: warnings,
	})
}

func (h *handler) quoteLease(req lease.Request, bands []rateband.RateBand, start time.Time) (lease.Result, error) {
	if err := validation.ValidateLeaseRequest(req); err != nil {
		return lease.Result{}, err
	}
	return engine.CalculateLeaseQuoteWithFixedTime(h.logger, req, bands, start)
}

func (h *handler) handleLoanSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLoanSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload loanScheduleRequest
	if !h.decode(w, r, &payload, op) {
		return
	}

	p, err := payload.Loan.ToParameters(payload.Solver)
	if err == nil {
		err = validation.ValidateLoanParameters(p)
	}
	if err == nil {
		err = validation.ValidateSolverLimits(p, h.limits)
	}
	if err != nil {
		metrics.ObserveQuote(metrics.KindLoan, err)
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	timeout := h.solveTimeout
	if timeout <= 0 {
		timeout = constants.LoanSolveTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	rows, stats, err := engine.SolveLoanAmortizationWithStats(ctx, h.logger, p)
	metrics.ObserveQuote(metrics.KindLoan, err)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	metrics.SolverIterations.Observe(float64(stats.Iterations))

	h.writeJSON(w, http.StatusOK, loanScheduleResponse{
		ID:                      w.Header().Get(constants.RequestIDHeader),
		BeforePrepaymentPayment: stats.BeforePrepaymentPayment,
		AfterPrepaymentPayment:  stats.AfterPrepaymentPayment,
		Iterations:              stats.Iterations,
		Schedule:                rows,
	})
}

// decode reads a size-limited JSON body into dst and reports whether the
// handler should continue.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// statusFor maps calculation errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, rateband.ErrConfigurationNotFound):
		return http.StatusNotFound
	case errors.Is(err, loans.ErrNonConvergent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondCalculationError(w http.ResponseWriter, err error, op string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusNotFound {
		msg = "no pricing available: " + msg
	}
	h.respondErrorWithOp(w, status, msg, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("quote request failed",
		zap.String("op", op),
		zap.String("requestId", w.Header().Get(constants.RequestIDHeader)),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
