package forecast

import "cashflow/internal/core"

// ObligationShares are the obligation streams as percentages of the total.
type ObligationShares struct {
	CreditCardCost    float64 `json:"creditCardCost"`
	LoanPayments      float64 `json:"loanPayments"`
	RecurringExpenses float64 `json:"recurringExpenses"`
}

// Summary condenses a baseline and its projection.
type Summary struct {
	Horizon            int              `json:"horizon"`
	MonthlyIncome      int64            `json:"monthlyIncome"`
	MonthlyObligations int64            `json:"monthlyObligations"`
	MonthlyNetFlow     int64            `json:"monthlyNetFlow"`
	FinalWealth        int64            `json:"finalWealth"`
	FinalWealthDisplay string           `json:"finalWealthDisplay"`
	MaxWealth          int64            `json:"maxWealth"`
	MinWealth          int64            `json:"minWealth"`
	AnnualizedIncome   int64            `json:"annualizedIncome"`
	AnnualizedExpense  int64            `json:"annualizedExpense"`
	AnnualizedNetFlow  int64            `json:"annualizedNetFlow"`
	ObligationShares   ObligationShares `json:"obligationShares"`
}

// Summarize derives headline figures from baseline and points. Final,
// max and min wealth are 0 for an empty projection.
func Summarize(baseline Baseline, points []ProjectionPoint, base core.Currency) Summary {
	total := baseline.Obligations.Total
	s := Summary{
		Horizon:            len(points),
		MonthlyIncome:      baseline.Income,
		MonthlyObligations: total,
		MonthlyNetFlow:     baseline.NetFlow,
		AnnualizedIncome:   baseline.Income * core.MonthsPerYear,
		AnnualizedExpense:  total * core.MonthsPerYear,
		AnnualizedNetFlow:  baseline.NetFlow * core.MonthsPerYear,
		ObligationShares: ObligationShares{
			CreditCardCost:    core.Percentage(baseline.Obligations.CreditCardCost, total),
			LoanPayments:      core.Percentage(baseline.Obligations.LoanPayments, total),
			RecurringExpenses: core.Percentage(baseline.Obligations.RecurringExpenses, total),
		},
	}
	for i, p := range points {
		if i == 0 || p.CumulativeWealth > s.MaxWealth {
			s.MaxWealth = p.CumulativeWealth
		}
		if i == 0 || p.CumulativeWealth < s.MinWealth {
			s.MinWealth = p.CumulativeWealth
		}
	}
	if n := len(points); n > 0 {
		s.FinalWealth = points[n-1].CumulativeWealth
	}
	s.FinalWealthDisplay = core.FormatMinor(s.FinalWealth, base)
	return s
}
