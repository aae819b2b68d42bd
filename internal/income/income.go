// Package income aggregates recurring income in the base currency.
package income

import "cashflow/internal/core"

// Group is an aggregate over a subset of contributing income records.
type Group struct {
	TotalAmountInBase   int64   `json:"totalAmountInBase"`
	TotalOriginalAmount int64   `json:"totalOriginalAmount"`
	MemberCount         int     `json:"memberCount"`
	Percentage          float64 `json:"percentage"`
}

// Summary is the income overview shown on the dashboard.
type Summary struct {
	MonthlyTotal int64                         `json:"monthlyTotal"`
	AnnualTotal  int64                         `json:"annualTotal"`
	ActiveCount  int                           `json:"activeCount"`
	ByCurrency   map[core.Currency]Group       `json:"byCurrency"`
	ByCategory   map[core.IncomeCategory]Group `json:"byCategory"`
}

// Contributes reports whether r takes part in monthly income.
func Contributes(r core.IncomeRecord) bool {
	return r.IsActive && r.IsRecurring
}

// TotalMonthlyIncome sums AmountInBase over active recurring records.
func TotalMonthlyIncome(records []core.IncomeRecord) int64 {
	var total int64
	for _, r := range records {
		if Contributes(r) {
			total += r.AmountInBase.Minor
		}
	}
	return total
}

// AnnualIncome is TotalMonthlyIncome over a year.
func AnnualIncome(records []core.IncomeRecord) int64 {
	return TotalMonthlyIncome(records) * core.MonthsPerYear
}

// GroupByCurrency groups contributing records by their original currency.
func GroupByCurrency(records []core.IncomeRecord) map[core.Currency]Group {
	return groupBy(records, func(r core.IncomeRecord) core.Currency { return r.Amount.Currency })
}

// GroupByCategory groups contributing records by category.
func GroupByCategory(records []core.IncomeRecord) map[core.IncomeCategory]Group {
	return groupBy(records, func(r core.IncomeRecord) core.IncomeCategory { return r.Category })
}

func groupBy[K comparable](records []core.IncomeRecord, key func(core.IncomeRecord) K) map[K]Group {
	groups := make(map[K]Group)
	var total int64
	for _, r := range records {
		if !Contributes(r) {
			continue
		}
		g := groups[key(r)]
		g.TotalAmountInBase += r.AmountInBase.Minor
		g.TotalOriginalAmount += r.Amount.Minor
		g.MemberCount++
		groups[key(r)] = g
		total += r.AmountInBase.Minor
	}
	for k, g := range groups {
		g.Percentage = core.Percentage(g.TotalAmountInBase, total)
		groups[k] = g
	}
	return groups
}

// Summarize builds the income overview.
func Summarize(records []core.IncomeRecord) Summary {
	s := Summary{
		MonthlyTotal: TotalMonthlyIncome(records),
		ByCurrency:   GroupByCurrency(records),
		ByCategory:   GroupByCategory(records),
	}
	s.AnnualTotal = s.MonthlyTotal * core.MonthsPerYear
	for _, r := range records {
		if r.IsActive {
			s.ActiveCount++
		}
	}
	return s
}
