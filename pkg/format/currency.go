// Package format renders money and rates for human and machine output.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fixed renders amount rounded half away from zero to places decimals, with no
// grouping (e.g., "-1234.56").
func Fixed(amount float64, places int32) string {
	return decimal.NewFromFloat(amount).StringFixed(places)
}

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(amount)
	if strings.HasPrefix(formatted, "-") {
		return "-$" + formatted[1:]
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
// Rounding happens in decimal so halves go away from zero.
func NumericCurrency(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return message.NewPrinter(language.English).Sprintf("%.2f", rounded)
}

// Rate renders a per-kWh rate with six decimals.
func Rate(rate float64) string {
	return Fixed(rate, 6)
}
