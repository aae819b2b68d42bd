package obligation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
)

var anchor = core.NewMonth(2025, time.January)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(DefaultOptions())
	require.NoError(t, err)
	return c
}

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func expense(id string, amount int64, p core.RecurringPattern, active bool) core.ExpenseRecord {
	return core.ExpenseRecord{
		ID:               id,
		Name:             id,
		Ledger:           core.LedgerRecurring,
		Category:         core.ExpenseOther,
		Amount:           core.NewMoney(amount, core.CNY),
		AmountInBase:     core.NewMoney(amount, core.CNY),
		RecurringPattern: p,
		IsActive:         active,
	}
}

func TestCardCostDefaultRate(t *testing.T) {
	c := newCalculator(t)
	cost := c.CardCost(core.CreditCard{ID: "cc", CreditLimit: 100000, AnnualFee: 12000, IsActive: true})
	assert.Equal(t, int64(600), cost.MonthlyCashAdvanceFee)
	assert.Equal(t, int64(1000), cost.MonthlyAnnualFeeShare)
	assert.Equal(t, int64(1600), cost.Total)
	assert.True(t, cost.CashAdvanceRate.Equal(DefaultCashAdvanceRate))
}

func TestCardCostRounding(t *testing.T) {
	c := newCalculator(t)
	// 12345 * 0.006 = 74.07, 1000 / 12 = 83.33
	cost := c.CardCost(core.CreditCard{ID: "cc", CreditLimit: 12345, AnnualFee: 1000})
	assert.Equal(t, int64(74), cost.MonthlyCashAdvanceFee)
	assert.Equal(t, int64(83), cost.MonthlyAnnualFeeShare)
	// 250 * 0.006 = 1.5, 18 / 12 = 1.5
	cost = c.CardCost(core.CreditCard{ID: "cc", CreditLimit: 250, AnnualFee: 18})
	assert.Equal(t, int64(2), cost.MonthlyCashAdvanceFee)
	assert.Equal(t, int64(2), cost.MonthlyAnnualFeeShare)
}

func TestCardCostExplicitRate(t *testing.T) {
	c := newCalculator(t)
	cost := c.CardCost(core.CreditCard{ID: "cc", CreditLimit: 100000, CashAdvanceRate: rate("0.01")})
	assert.Equal(t, int64(1000), cost.MonthlyCashAdvanceFee)

	cost = c.CardCost(core.CreditCard{ID: "cc", CreditLimit: 100000, AnnualFee: 1200, CashAdvanceRate: rate("0")})
	assert.Equal(t, int64(0), cost.MonthlyCashAdvanceFee)
	assert.Equal(t, int64(100), cost.Total)
}

func TestCalculatorOptions(t *testing.T) {
	c, err := NewCalculator(Options{DefaultCashAdvanceRate: decimal.RequireFromString("0.005")})
	require.NoError(t, err)
	assert.Equal(t, int64(500), c.CardCost(core.CreditCard{CreditLimit: 100000}).Total)

	_, err = NewCalculator(Options{DefaultCashAdvanceRate: decimal.RequireFromString("-0.1")})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestTotalCardCostSkipsInactive(t *testing.T) {
	c := newCalculator(t)
	cards := []core.CreditCard{
		{ID: "a", CreditLimit: 100000, AnnualFee: 12000, IsActive: true},
		{ID: "b", CreditLimit: 50000, IsActive: true},
		{ID: "c", CreditLimit: 900000, AnnualFee: 12000, IsActive: false},
	}
	assert.Equal(t, int64(1900), c.TotalCardCost(cards))
	assert.Len(t, c.CardCosts(cards), 2)
	assert.Equal(t, int64(150000), TotalCreditLimit(cards))
}

func TestAnnualCostRate(t *testing.T) {
	c := newCalculator(t)
	assert.InDelta(t, 19.2, c.AnnualCostRate(core.CreditCard{CreditLimit: 100000, AnnualFee: 12000}), 1e-9)
	assert.Equal(t, 0.0, c.AnnualCostRate(core.CreditCard{AnnualFee: 12000}))
}

func TestExpenseMonthlyTotal(t *testing.T) {
	total, err := ExpenseMonthlyTotal([]core.ExpenseRecord{
		expense("rent", 800000, core.Monthly, true),
		expense("groceries", 10000, core.Weekly, true),
		expense("insurance", 120000, core.Yearly, true),
		expense("gym", 30000, core.Monthly, false),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800000+43300+10000), total)

	_, err = ExpenseMonthlyTotal([]core.ExpenseRecord{expense("bad", 1, "daily", true)})
	assert.ErrorIs(t, err, core.ErrUnknownPattern)
}

func TestBreakdown(t *testing.T) {
	c := newCalculator(t)
	cards := []core.CreditCard{{ID: "cc", CreditLimit: 100000, AnnualFee: 12000, IsActive: true}}
	loans := []core.LoanRecord{{ID: "l", Name: "l", LoanType: core.LoanConsumer, MonthlyPayment: 500000, RemainingTerms: core.Ints(2), IsActive: true}}
	expenses := []core.ExpenseRecord{expense("rent", 800000, core.Monthly, true)}

	b, err := c.Breakdown(cards, loans, expenses, anchor, anchor)
	require.NoError(t, err)
	assert.Equal(t, Breakdown{CreditCardCost: 1600, LoanPayments: 500000, RecurringExpenses: 800000, Total: 1301600}, b)

	total, err := c.TotalMonthlyObligations(cards, loans, expenses, anchor, anchor.AddMonths(2))
	require.NoError(t, err)
	assert.Equal(t, int64(801600), total)

	total, err = c.TotalMonthlyObligations(nil, nil, nil, anchor, anchor)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
