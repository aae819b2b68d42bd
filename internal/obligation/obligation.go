// Package obligation sums the recurring fixed costs due in a month:
// credit-card carrying cost, loan installments and recurring expenses.
// All amounts are expected in the base currency.
package obligation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/loan"
)

// DefaultCashAdvanceRate is the monthly cash-advance fee rate applied to
// cards without their own rate.
var DefaultCashAdvanceRate = decimal.RequireFromString("0.006")

var ErrInvalidOptions = errors.New("invalid obligation options")

// Options configures a Calculator.
type Options struct {
	DefaultCashAdvanceRate decimal.Decimal
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{DefaultCashAdvanceRate: DefaultCashAdvanceRate}
}

// Calculator computes monthly obligations. It holds no mutable state.
type Calculator struct {
	opts Options
}

// NewCalculator validates opts and returns a Calculator.
func NewCalculator(opts Options) (*Calculator, error) {
	if opts.DefaultCashAdvanceRate.IsNegative() {
		return nil, fmt.Errorf("%w: negative cash advance rate %s", ErrInvalidOptions, opts.DefaultCashAdvanceRate)
	}
	return &Calculator{opts: opts}, nil
}

// CardCost is the monthly cost of using one card as a cash-flow source.
type CardCost struct {
	CardID                string          `json:"cardId"`
	BankName              string          `json:"bankName"`
	CreditLimit           int64           `json:"creditLimit"`
	AnnualFee             int64           `json:"annualFee"`
	CashAdvanceRate       decimal.Decimal `json:"cashAdvanceRate"`
	MonthlyCashAdvanceFee int64           `json:"monthlyCashAdvanceFee"`
	MonthlyAnnualFeeShare int64           `json:"monthlyAnnualFeeShare"`
	Total                 int64           `json:"total"`
}

// Breakdown splits a month's obligations by stream.
type Breakdown struct {
	CreditCardCost    int64 `json:"creditCardCost"`
	LoanPayments      int64 `json:"loanPayments"`
	RecurringExpenses int64 `json:"recurringExpenses"`
	Total             int64 `json:"total"`
}

// RateFor returns the cash-advance rate applied to c. An explicit zero
// rate is honoured.
func (c *Calculator) RateFor(card core.CreditCard) decimal.Decimal {
	if card.CashAdvanceRate != nil {
		return *card.CashAdvanceRate
	}
	return c.opts.DefaultCashAdvanceRate
}

// CardCost computes round(limit x rate) + round(annualFee / 12).
func (c *Calculator) CardCost(card core.CreditCard) CardCost {
	rate := c.RateFor(card)
	fee := decimal.NewFromInt(card.CreditLimit).Mul(rate).Round(0).IntPart()
	share := decimal.NewFromInt(card.AnnualFee).Div(decimal.NewFromInt(core.MonthsPerYear)).Round(0).IntPart()
	return CardCost{
		CardID:                card.ID,
		BankName:              card.BankName,
		CreditLimit:           card.CreditLimit,
		AnnualFee:             card.AnnualFee,
		CashAdvanceRate:       rate,
		MonthlyCashAdvanceFee: fee,
		MonthlyAnnualFeeShare: share,
		Total:                 fee + share,
	}
}

// CardCosts returns the cost of every active card.
func (c *Calculator) CardCosts(cards []core.CreditCard) []CardCost {
	out := make([]CardCost, 0, len(cards))
	for _, card := range cards {
		if card.IsActive {
			out = append(out, c.CardCost(card))
		}
	}
	return out
}

// TotalCardCost sums CardCost over active cards.
func (c *Calculator) TotalCardCost(cards []core.CreditCard) int64 {
	var total int64
	for _, cc := range c.CardCosts(cards) {
		total += cc.Total
	}
	return total
}

// AnnualCostRate is the yearly cost of card as a percentage of its
// limit, 0 when the limit is 0.
func (c *Calculator) AnnualCostRate(card core.CreditCard) float64 {
	if card.CreditLimit == 0 {
		return 0
	}
	return core.Percentage(c.CardCost(card).Total*core.MonthsPerYear, card.CreditLimit)
}

// TotalCreditLimit sums the limit of active cards.
func TotalCreditLimit(cards []core.CreditCard) int64 {
	var total int64
	for _, card := range cards {
		if card.IsActive {
			total += card.CreditLimit
		}
	}
	return total
}

// ExpenseMonthlyTotal sums the monthly equivalent of active expenses.
func ExpenseMonthlyTotal(expenses []core.ExpenseRecord) (int64, error) {
	var total int64
	for _, e := range expenses {
		if !e.IsActive {
			continue
		}
		m, err := e.RecurringPattern.MonthlyEquivalent(e.AmountInBase.Minor)
		if err != nil {
			return 0, fmt.Errorf("expense %q: %w", e.ID, err)
		}
		total += m
	}
	return total, nil
}

// Breakdown computes the obligations due in target. Loans are evaluated
// against anchor; card and expense costs are the same every month.
func (c *Calculator) Breakdown(cards []core.CreditCard, loans []core.LoanRecord, expenses []core.ExpenseRecord, anchor, target core.Month) (Breakdown, error) {
	exp, err := ExpenseMonthlyTotal(expenses)
	if err != nil {
		return Breakdown{}, err
	}
	b := Breakdown{
		CreditCardCost:    c.TotalCardCost(cards),
		LoanPayments:      loan.TotalPaymentForMonth(loans, anchor, target),
		RecurringExpenses: exp,
	}
	b.Total = b.CreditCardCost + b.LoanPayments + b.RecurringExpenses
	return b, nil
}

// TotalMonthlyObligations returns Breakdown(...).Total.
func (c *Calculator) TotalMonthlyObligations(cards []core.CreditCard, loans []core.LoanRecord, expenses []core.ExpenseRecord, anchor, target core.Month) (int64, error) {
	b, err := c.Breakdown(cards, loans, expenses, anchor, target)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}
