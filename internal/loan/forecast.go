package loan

import (
	"errors"
	"fmt"

	"cashflow/internal/core"
)

var (
	// ErrInvalidMonths is returned for a negative forecast length.
	ErrInvalidMonths = errors.New("forecast months must not be negative")
	// ErrNoSchedule is returned for inactive loans and loans without a
	// fixed number of remaining terms.
	ErrNoSchedule = errors.New("loan has no finite repayment schedule")
)

// DefaultForecastMonths is the forecast length used when none is given.
const DefaultForecastMonths = 120

// Installment is one month of a repayment schedule.
type Installment struct {
	Index            int        `json:"index"`
	Month            core.Month `json:"month"`
	Payment          int64      `json:"payment"`
	RemainingBalance int64      `json:"remainingBalance"`
	RemainingTerms   int        `json:"remainingTerms"`
}

// Schedule is the month-by-month repayment outlook for one loan.
// Interest is not modelled: every payment reduces the balance in full.
type Schedule struct {
	LoanID                string        `json:"loanId"`
	LoanName              string        `json:"loanName"`
	Period                int           `json:"period"`
	TotalPayments         int64         `json:"totalPayments"`
	FinalRemainingBalance int64         `json:"finalRemainingBalance"`
	Completed             bool          `json:"completed"`
	Installments          []Installment `json:"installments"`
}

// Forecast walks l month by month from its remaining balance starting at
// anchor. It stops after RemainingTerms months, after months months, or
// once the balance is repaid. Inactive loans and loans without terms have
// no schedule and yield ErrNoSchedule.
func Forecast(l core.LoanRecord, anchor core.Month, months int) (*Schedule, error) {
	if months < 0 {
		return nil, ErrInvalidMonths
	}
	if !l.IsActive || l.RemainingTerms == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSchedule, l.ID)
	}
	period := min(months, *l.RemainingTerms)
	s := &Schedule{
		LoanID:       l.ID,
		LoanName:     l.Name,
		Period:       period,
		Installments: make([]Installment, 0, period),
	}
	balance := l.RemainingBalance
	terms := *l.RemainingTerms
	for i := 0; i < period && balance > 0; i++ {
		target := anchor.AddMonths(i)
		payment := min(EffectivePayment(l, anchor, target), balance)
		balance -= payment
		terms--
		s.TotalPayments += payment
		s.Installments = append(s.Installments, Installment{
			Index:            i + 1,
			Month:            target,
			Payment:          payment,
			RemainingBalance: balance,
			RemainingTerms:   terms,
		})
	}
	s.FinalRemainingBalance = balance
	s.Completed = balance <= 0
	return s, nil
}
