// Package expense analyses recurring and living expenses by their
// monthly equivalent in the base currency.
package expense

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

// DefaultInflationRate is the annual rate used by ForecastInflation
// callers that have no better estimate.
var DefaultInflationRate = decimal.RequireFromString("0.03")

var ErrInvalidMonths = errors.New("forecast months must not be negative")

// Item is an active expense with its monthly equivalent.
type Item struct {
	Record  core.ExpenseRecord `json:"record"`
	Monthly int64              `json:"monthly"`
}

// CategoryBreakdown aggregates one expense category.
type CategoryBreakdown struct {
	DisplayName  string  `json:"displayName"`
	TotalMonthly int64   `json:"totalMonthly"`
	Items        []Item  `json:"items"`
	Percentage   float64 `json:"percentage"`
}

// CurrencyBreakdown aggregates expenses entered in one currency.
type CurrencyBreakdown struct {
	TotalOriginal int64   `json:"totalOriginal"`
	TotalMonthly  int64   `json:"totalMonthly"`
	Percentage    float64 `json:"percentage"`
}

// Analysis is the expense overview.
type Analysis struct {
	TotalMonthly int64                                      `json:"totalMonthly"`
	ByCategory   map[core.ExpenseCategory]CategoryBreakdown `json:"byCategory"`
	ByCurrency   map[core.Currency]CurrencyBreakdown        `json:"byCurrency"`
	ByLedger     map[core.Ledger]int64                      `json:"byLedger"`
}

// InflationPoint is one month of an inflation-adjusted expense outlook.
type InflationPoint struct {
	Month         int   `json:"month"`
	Total         int64 `json:"total"`
	AdjustedTotal int64 `json:"adjustedTotal"`
}

// Items returns the active expenses with their monthly equivalents.
func Items(expenses []core.ExpenseRecord) ([]Item, error) {
	items := make([]Item, 0, len(expenses))
	for _, e := range expenses {
		if !e.IsActive {
			continue
		}
		m, err := e.RecurringPattern.MonthlyEquivalent(e.AmountInBase.Minor)
		if err != nil {
			return nil, fmt.Errorf("expense %q: %w", e.ID, err)
		}
		items = append(items, Item{Record: e, Monthly: m})
	}
	return items, nil
}

// Analyze groups active expenses by category, currency and ledger.
func Analyze(expenses []core.ExpenseRecord) (Analysis, error) {
	items, err := Items(expenses)
	if err != nil {
		return Analysis{}, err
	}
	a := Analysis{
		ByCategory: make(map[core.ExpenseCategory]CategoryBreakdown),
		ByCurrency: make(map[core.Currency]CurrencyBreakdown),
		ByLedger:   make(map[core.Ledger]int64),
	}
	for _, it := range items {
		r := it.Record
		a.TotalMonthly += it.Monthly

		cb := a.ByCategory[r.Category]
		cb.DisplayName = r.Category.DisplayName()
		cb.TotalMonthly += it.Monthly
		cb.Items = append(cb.Items, it)
		a.ByCategory[r.Category] = cb

		cur := a.ByCurrency[r.Amount.Currency]
		cur.TotalOriginal += r.Amount.Minor
		cur.TotalMonthly += it.Monthly
		a.ByCurrency[r.Amount.Currency] = cur

		a.ByLedger[r.Ledger] += it.Monthly
	}
	for k, cb := range a.ByCategory {
		cb.Percentage = core.Percentage(cb.TotalMonthly, a.TotalMonthly)
		a.ByCategory[k] = cb
	}
	for k, cur := range a.ByCurrency {
		cur.Percentage = core.Percentage(cur.TotalMonthly, a.TotalMonthly)
		a.ByCurrency[k] = cur
	}
	return a, nil
}

// Top returns the n largest active expenses by monthly equivalent.
func Top(expenses []core.ExpenseRecord, n int) ([]Item, error) {
	items, err := Items(expenses)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Monthly > items[j].Monthly
	})
	if n >= 0 && n < len(items) {
		items = items[:n]
	}
	return items, nil
}

// ExpenseToIncomeRatio returns expense as a percentage of income, 0 when
// there is no income.
func ExpenseToIncomeRatio(expense, income int64) float64 {
	if income <= 0 {
		return 0
	}
	return core.Percentage(expense, income)
}

// ForecastInflation projects the monthly expense total for months 1..months
// compounding annualRate/12 every month.
func ForecastInflation(expenses []core.ExpenseRecord, months int, annualRate decimal.Decimal) ([]InflationPoint, error) {
	if months < 0 {
		return nil, ErrInvalidMonths
	}
	items, err := Items(expenses)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, it := range items {
		total += it.Monthly
	}
	monthly := decimal.NewFromInt(1).Add(annualRate.Div(decimal.NewFromInt(core.MonthsPerYear)))
	factor := decimal.NewFromInt(1)
	base := decimal.NewFromInt(total)
	out := make([]InflationPoint, 0, months)
	for m := 1; m <= months; m++ {
		factor = factor.Mul(monthly)
		out = append(out, InflationPoint{
			Month:         m,
			Total:         total,
			AdjustedTotal: base.Mul(factor).Round(0).IntPart(),
		})
	}
	return out, nil
}
