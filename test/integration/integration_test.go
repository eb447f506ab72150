package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/quote-engine/internal/config"
	"github.com/iwvelando/quote-engine/internal/quotes"
	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/output"
	"github.com/iwvelando/quote-engine/pkg/testutil"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func runExample(t *testing.T) []quotes.Quote {
	t.Helper()

	conf, err := config.LoadConfiguration("../../" + constants.ExampleConfigFile)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("example configuration has warnings: %v", warnings)
	}

	results, err := quotes.Run(context.Background(), zap.NewNop(), conf, fixedNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, q := range results {
		if q.Err != nil {
			t.Fatalf("quote %s failed: %v", q.Name, q.Err)
		}
	}
	return results
}

// TestExampleBaseline checks the example configuration against hand-computed
// quotes.
func TestExampleBaseline(t *testing.T) {
	results := runExample(t)

	leaseChecks := []struct {
		name    string
		payment float64
		energy  float64
	}{
		{"Residential solar", 280.00, 320.00},
		{"Solar with storage", 265.00, 305.00},
	}

	for _, check := range leaseChecks {
		t.Run(check.name, func(t *testing.T) {
			q := testutil.FindQuote(results, check.name)
			if q == nil || q.Lease == nil {
				t.Fatalf("lease %q not found in results", check.name)
			}
			if math.Abs(q.Lease.MonthlyLeasePayment-check.payment) > 0.01 {
				t.Errorf("MonthlyLeasePayment = %.4f, expected %.2f", q.Lease.MonthlyLeasePayment, check.payment)
			}
			if math.Abs(q.Lease.MonthlyEnergyPayment-check.energy) > 0.01 {
				t.Errorf("MonthlyEnergyPayment = %.4f, expected %.2f", q.Lease.MonthlyEnergyPayment, check.energy)
			}
			if got := q.Lease.PaymentCount(); got != 240 {
				t.Errorf("PaymentCount() = %d, expected 240", got)
			}
			// March start: a partial first year and a partial 21st bucket.
			if got := len(q.Lease.YearlyPaymentSchedule); got != 21 {
				t.Errorf("len(YearlyPaymentSchedule) = %d, expected 21", got)
			}
		})
	}

	t.Run("Interest-free bridge", func(t *testing.T) {
		q := testutil.FindQuote(results, "Interest-free bridge")
		if q == nil {
			t.Fatalf("loan not found in results")
		}
		if len(q.Loan) != 121 {
			t.Fatalf("len(Loan) = %d, expected 121", len(q.Loan))
		}
		if math.Abs(q.Loan[1].MonthlyPayment-166.67) > 0.01 {
			t.Errorf("MonthlyPayment = %.4f, expected 166.67", q.Loan[1].MonthlyPayment)
		}
		last := q.Loan[120]
		if last.EndingBalance != 0 {
			t.Errorf("final EndingBalance = %v, expected 0", last.EndingBalance)
		}
		if math.Abs(last.AdjustedMonthlyPayment-last.MonthlyPayment) > 0.01 {
			t.Errorf("AdjustedMonthlyPayment %.4f differs from MonthlyPayment %.4f by more than a cent",
				last.AdjustedMonthlyPayment, last.MonthlyPayment)
		}
	})

	t.Run("Equipment loan", func(t *testing.T) {
		q := testutil.FindQuote(results, "Equipment loan")
		if q == nil {
			t.Fatalf("loan not found in results")
		}
		if len(q.Loan) != 241 {
			t.Fatalf("len(Loan) = %d, expected 241", len(q.Loan))
		}
		if q.Loan[12].PrePaymentAmount != 5000 || q.Loan[12].StartingBalance != 15000 {
			t.Errorf("row 12 = %+v, expected a 5000 prepayment leaving 15000", q.Loan[12])
		}
		if q.Loan[1].MonthlyPayment != 0 || q.Loan[2].MonthlyPayment != 0 {
			t.Errorf("arrears rows paid %.2f and %.2f, expected 0", q.Loan[1].MonthlyPayment, q.Loan[2].MonthlyPayment)
		}
		if got := q.Loan[240].PaymentDueDate.Format(constants.DateLayout); got != "2045-01-15" {
			t.Errorf("final due date = %s, expected 2045-01-15", got)
		}
		if q.Loan[240].EndingBalance != 0 {
			t.Errorf("final EndingBalance = %v, expected 0", q.Loan[240].EndingBalance)
		}
	})
}

// TestCSVOutputFormat checks each quote gets a labelled CSV section.
func TestCSVOutputFormat(t *testing.T) {
	results := runExample(t)

	var buf bytes.Buffer
	if err := output.Quotes(&buf, constants.OutputFormatCSV, results); err != nil {
		t.Fatalf("Quotes() error = %v", err)
	}
	out := buf.String()

	for _, marker := range []string{
		"# Residential solar\nmonth,amount,ratePerKWh,monthlyEnergyPayment\n2025-03,280.00,0.280000,320.00\n",
		"# Equipment loan\nperiod,paymentDueDate,",
		"\n0,2025-01-15,",
		"\n240,2045-01-15,",
	} {
		if !strings.Contains(out, marker) {
			t.Errorf("CSV output missing %q", marker)
		}
	}
}

// TestPrettyOutputFormat checks the human-readable headers and a sample row.
func TestPrettyOutputFormat(t *testing.T) {
	results := runExample(t)

	var buf bytes.Buffer
	if err := output.Quotes(&buf, constants.OutputFormatPretty, results); err != nil {
		t.Fatalf("Quotes() error = %v", err)
	}
	out := buf.String()

	for _, marker := range []string{
		"--- Lease quote Residential solar ---",
		"Monthly lease payment:  $280.00",
		"2025 | 03-12 | $2,800.00",
		"--- Amortization schedule Interest-free bridge ---",
		"0 | 2025-01-15 | $20,000.00 |",
	} {
		if !strings.Contains(out, marker) {
			t.Errorf("pretty output missing %q", marker)
		}
	}
}

// TestJSONOutputFormat checks the JSON batch decodes back into quotes.
func TestJSONOutputFormat(t *testing.T) {
	results := runExample(t)

	var buf bytes.Buffer
	if err := output.Quotes(&buf, constants.OutputFormatJSON, results); err != nil {
		t.Fatalf("Quotes() error = %v", err)
	}

	var decoded []quotes.Quote
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(decoded) != len(results) {
		t.Fatalf("decoded %d quotes, expected %d", len(decoded), len(results))
	}
	if q := testutil.FindQuote(decoded, "Equipment loan"); q == nil || len(q.Loan) != 241 {
		t.Errorf("Equipment loan did not survive JSON output")
	}
}
