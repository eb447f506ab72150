// Package output provides utilities for formatting and displaying quote results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iwvelando/quote-engine/internal/quotes"
	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/format"
	"github.com/iwvelando/quote-engine/pkg/lease"
	"github.com/iwvelando/quote-engine/pkg/loans"
)

// PrettyLease outputs a human-readable lease quote with one line per year.
func PrettyLease(w io.Writer, name string, result lease.Result) error {
	if _, err := fmt.Fprintf(w, "--- Lease quote %s ---\n", name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Monthly lease payment:  %s\n", format.Currency(result.MonthlyLeasePayment))
	_, _ = fmt.Fprintf(w, "Monthly energy payment: %s\n", format.Currency(result.MonthlyEnergyPayment))
	_, _ = fmt.Fprintf(w, "Rate per kWh:           %s\n", format.Rate(result.RatePerKWh))
	_, _ = fmt.Fprintf(w, "Year | Months | Total\n")
	_, _ = fmt.Fprintf(w, "____ | ______ | _____\n")
	for _, year := range result.YearlyPaymentSchedule {
		total := 0.0
		for _, m := range year.MonthlyPayments {
			total += m.Amount
		}
		first, last := year.MonthlyPayments[0].Month, year.MonthlyPayments[len(year.MonthlyPayments)-1].Month
		if _, err := fmt.Fprintf(w, "%d | %02d-%02d | %s\n", year.Year, first, last, format.Currency(total)); err != nil {
			return err
		}
	}
	return nil
}

// PrettyLoan outputs a human-readable amortization table. The payment column
// shows the adjusted payment so the trued-up final row is visible.
func PrettyLoan(w io.Writer, name string, rows []loans.Period) error {
	if _, err := fmt.Fprintf(w, "--- Amortization schedule %s ---\n", name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Period | Due        | Starting Balance | Payment | Interest | Principal | Ending Balance\n")
	_, _ = fmt.Fprintf(w, "______ | __________ | ________________ | _______ | ________ | _________ | ______________\n")
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%d | %s | %s | %s | %s | %s | %s\n",
			row.Period, row.PaymentDueDate.Format(constants.DateLayout),
			format.Currency(row.StartingBalance), format.Currency(row.AdjustedMonthlyPayment), format.Currency(row.InterestComponent),
			format.Currency(row.PrincipleComponent), format.Currency(row.EndingBalance)); err != nil {
			return err
		}
	}
	return nil
}

// CsvLoan outputs an amortization schedule in comma-separated value format.
func CsvLoan(w io.Writer, rows []loans.Period) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"period", "paymentDueDate", "daysInPeriod", "daysInYear", "startingBalance",
		"monthlyPayment", "interestComponent", "principleComponent", "endingBalance",
		"prePaymentAmount", "unpaidInterestForPeriod", "unpaidInterestCumulative",
		"adjustedMonthlyPayment",
	})
	for _, row := range rows {
		_ = cw.Write([]string{
			strconv.Itoa(row.Period),
			row.PaymentDueDate.Format(constants.DateLayout),
			strconv.Itoa(row.DaysInPeriod),
			strconv.Itoa(row.DaysInYear),
			format.Fixed(row.StartingBalance, 2),
			format.Fixed(row.MonthlyPayment, 2),
			format.Fixed(row.InterestComponent, 2),
			format.Fixed(row.PrincipleComponent, 2),
			format.Fixed(row.EndingBalance, 2),
			format.Fixed(row.PrePaymentAmount, 2),
			format.Fixed(row.UnpaidInterestForPeriod, 2),
			format.Fixed(row.UnpaidInterestCumulative, 2),
			format.Fixed(row.AdjustedMonthlyPayment, 2),
		})
	}
	cw.Flush()
	return cw.Error()
}

// CsvLease outputs a lease payment schedule in comma-separated value format,
// one record per month.
func CsvLease(w io.Writer, result lease.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "amount", "ratePerKWh", "monthlyEnergyPayment"})
	rate := format.Rate(result.RatePerKWh)
	energy := format.Fixed(result.MonthlyEnergyPayment, 2)
	for _, year := range result.YearlyPaymentSchedule {
		for _, m := range year.MonthlyPayments {
			month := time.Date(year.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
			_ = cw.Write([]string{month.Format(constants.MonthLayout), format.Fixed(m.Amount, 2), rate, energy})
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Quotes writes a batch of quotes in the given output format. Failed quotes
// are reported inline rather than skipped.
func Quotes(w io.Writer, outputFormat string, results []quotes.Quote) error {
	if outputFormat == constants.OutputFormatJSON {
		return JSON(w, results)
	}

	for i, q := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		var err error
		switch {
		case q.Err != nil:
			_, err = fmt.Fprintf(w, "--- %s quote %s failed: %s ---\n", q.Kind, q.Name, q.Err)
		case outputFormat == constants.OutputFormatCSV && q.Lease != nil:
			_, _ = fmt.Fprintf(w, "# %s\n", q.Name)
			err = CsvLease(w, *q.Lease)
		case outputFormat == constants.OutputFormatCSV:
			_, _ = fmt.Fprintf(w, "# %s\n", q.Name)
			err = CsvLoan(w, q.Loan)
		case q.Lease != nil:
			err = PrettyLease(w, q.Name, *q.Lease)
		default:
			err = PrettyLoan(w, q.Name, q.Loan)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
