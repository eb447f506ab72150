package datetime

import "time"

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	if month == time.February && IsLeapYear(year) {
		return 29
	}
	return monthLengths[month-time.January]
}

// DueDateForPeriod returns the first day of the month periodOffset months
// after (startYear, startMonth).
func DueDateForPeriod(startYear, periodOffset int, startMonth time.Month) time.Time {
	return time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, periodOffset, 0)
}

// DueDate offsets start by periodOffset months, keeping the day of month but
// clamping it to the target month's length (Jan 31 + 1 month = Feb 28/29).
func DueDate(start time.Time, periodOffset int) time.Time {
	anchor := DueDateForPeriod(start.Year(), periodOffset, start.Month())
	day := start.Day()
	if last := DaysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
}
