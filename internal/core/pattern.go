package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	Monthly RecurringPattern = "monthly"
	Weekly  RecurringPattern = "weekly"
	Yearly  RecurringPattern = "yearly"
)

// RecurringPattern is how often a recurring amount falls due.
type RecurringPattern string

var (
	weeksPerMonth = decimal.RequireFromString("4.33")
	monthsPerYear = decimal.NewFromInt(MonthsPerYear)
)

// IsValid reports whether p is a supported pattern.
func (p RecurringPattern) IsValid() bool {
	switch p {
	case Monthly, Weekly, Yearly:
		return true
	default:
		return false
	}
}

// MonthlyEquivalent normalizes an amount due every p to a monthly amount:
// weekly x 4.33, yearly / 12, monthly x 1, rounded to the nearest minor unit.
func (p RecurringPattern) MonthlyEquivalent(minor int64) (int64, error) {
	switch p {
	case Monthly:
		return minor, nil
	case Weekly:
		return decimal.NewFromInt(minor).Mul(weeksPerMonth).Round(0).IntPart(), nil
	case Yearly:
		return decimal.NewFromInt(minor).Div(monthsPerYear).Round(0).IntPart(), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, string(p))
	}
}

// DisplayName returns a human readable label.
func (p RecurringPattern) DisplayName() string {
	switch p {
	case Monthly:
		return "Monthly"
	case Weekly:
		return "Weekly"
	case Yearly:
		return "Yearly"
	default:
		return string(p)
	}
}
