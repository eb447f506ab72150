package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{name: "Zero", amount: 0, expected: "$0.00"},
		{name: "Small", amount: 5.5, expected: "$5.50"},
		{name: "Thousands", amount: 1234.567, expected: "$1,234.57"},
		{name: "Millions", amount: 2997000205, expected: "$2,997,000,205.00"},
		{name: "Negative", amount: -1234.5, expected: "-$1,234.50"},
		{name: "Rounds half away from zero", amount: 0.125, expected: "$0.13"},
		{name: "Negative rounding to zero", amount: -0.001, expected: "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %s, expected %s", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(-9876543.21); got != "-9,876,543.21" {
		t.Errorf("NumericCurrency() = %s", got)
	}
	if got := NumericCurrency(999.999); got != "1,000.00" {
		t.Errorf("NumericCurrency() = %s", got)
	}
}

func TestFixedAndRate(t *testing.T) {
	if got := Fixed(166.66666, 2); got != "166.67" {
		t.Errorf("Fixed() = %s, expected 166.67", got)
	}
	if got := Fixed(-12, 2); got != "-12.00" {
		t.Errorf("Fixed() = %s, expected -12.00", got)
	}
	if got := Rate(0.18); got != "0.180000" {
		t.Errorf("Rate() = %s, expected 0.180000", got)
	}
}
