package quotes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/quote-engine/internal/config"
	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"github.com/iwvelando/quote-engine/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)

func loadExample(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../../" + constants.ExampleConfigFile)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

func TestRunExample(t *testing.T) {
	conf := loadExample(t)

	results, err := Run(context.Background(), zap.NewNop(), conf, fixedNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != len(conf.Leases)+len(conf.Loans) {
		t.Fatalf("len(results) = %d, expected %d", len(results), len(conf.Leases)+len(conf.Loans))
	}

	ids := make(map[string]bool)
	for _, q := range results {
		if q.Err != nil {
			t.Errorf("quote %s failed: %v", q.Name, q.Err)
		}
		if q.ID == "" || ids[q.ID] {
			t.Errorf("quote %s has missing or duplicate id %q", q.Name, q.ID)
		}
		ids[q.ID] = true
	}

	first := results[0]
	if first.Kind != "lease" || first.Lease == nil {
		t.Fatalf("first result = %+v, expected a lease", first)
	}
	// asOf pins the schedule to March 2025 regardless of now.
	if year := first.Lease.YearlyPaymentSchedule[0]; year.Year != 2025 || year.MonthlyPayments[0].Month != 3 {
		t.Errorf("schedule starts %d-%02d, expected 2025-03", year.Year, year.MonthlyPayments[0].Month)
	}

	loan := results[len(conf.Leases)]
	if loan.Kind != "loan" || len(loan.Loan) != 241 {
		t.Fatalf("first loan = %s with %d rows, expected 241", loan.Kind, len(loan.Loan))
	}
	if loan.Loan[240].EndingBalance != 0 {
		t.Errorf("final EndingBalance = %v, expected 0", loan.Loan[240].EndingBalance)
	}
}

func TestRunRecordsPerQuoteFailures(t *testing.T) {
	conf := loadExample(t)
	conf.Leases[0].Request.UtilityProgramName = "NOPE"
	conf.Leases[1].Request.CapacityKW = 0
	conf.Loans[0].PrepaymentAmount = 50000

	core, logs := observer.New(zapcore.WarnLevel)
	results, err := Run(context.Background(), zap.New(core), conf, fixedNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !errors.Is(results[0].Err, rateband.ErrConfigurationNotFound) {
		t.Errorf("lease 0 error = %v, expected ErrConfigurationNotFound", results[0].Err)
	}
	if !errors.Is(results[1].Err, validation.ErrInvalidInput) {
		t.Errorf("lease 1 error = %v, expected ErrInvalidInput", results[1].Err)
	}
	if !errors.Is(results[2].Err, validation.ErrInvalidInput) {
		t.Errorf("loan 0 error = %v, expected ErrInvalidInput", results[2].Err)
	}
	if results[3].Err != nil {
		t.Errorf("loan 1 should still be quoted, got %v", results[3].Err)
	}
	if !strings.Contains(results[0].Error, conf.Leases[0].Name) {
		t.Errorf("Error %q should name the lease", results[0].Error)
	}

	if logs.Len() != 3 {
		t.Errorf("logged %d warnings, expected 3", logs.Len())
	}
}

func TestRunBadAsOf(t *testing.T) {
	conf := loadExample(t)
	conf.AsOf = "later"

	if _, err := Run(context.Background(), nil, conf, fixedNow); err == nil {
		t.Error("Run() expected error for invalid asOf")
	}
}

func TestRunUsesNowWithoutAsOf(t *testing.T) {
	conf := loadExample(t)
	conf.AsOf = ""
	conf.Loans = nil

	results, err := Run(context.Background(), zap.NewNop(), conf, fixedNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	year := results[0].Lease.YearlyPaymentSchedule[0]
	if year.Year != 2026 || year.MonthlyPayments[0].Month != 10 {
		t.Errorf("schedule starts %d-%02d, expected 2026-10", year.Year, year.MonthlyPayments[0].Month)
	}
}

func TestRunUnknownBandSource(t *testing.T) {
	conf := loadExample(t)
	conf.RateBands.Source = "s3"

	if _, err := Run(context.Background(), zap.NewNop(), conf, fixedNow); err == nil {
		t.Error("Run() expected error for unknown rate band source")
	}
}
