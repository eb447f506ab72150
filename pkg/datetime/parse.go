// Package datetime provides date parsing and the day-count calendar used for
// interest accrual.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/quote-engine/pkg/constants"
)

const (
	// DateLayout is the format expected for full dates in config files.
	DateLayout = constants.DateLayout

	// MonthLayout is the format expected for month-only dates.
	MonthLayout = constants.MonthLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate accepts either a full date (2006-01-02) or a month (2006-01). A
// month resolves to its first day.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(MonthLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s or %s", value, DateLayout, MonthLayout)
	}
	return t, nil
}

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
