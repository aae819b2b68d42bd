package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
	"cashflow/internal/obligation"
)

func TestSummarize(t *testing.T) {
	baseline := Baseline{
		Month:  anchor,
		Income: 1000,
		Obligations: obligation.Breakdown{
			CreditCardCost:    100,
			LoanPayments:      1000,
			RecurringExpenses: 900,
			Total:             2000,
		},
		NetFlow: -1000,
	}
	points := []ProjectionPoint{
		{Month: anchor, MonthlyNetFlow: -1000, CumulativeWealth: -1000},
		{Month: anchor.AddMonths(1), MonthlyNetFlow: -500, CumulativeWealth: -1500},
		{Month: anchor.AddMonths(2), MonthlyNetFlow: 4000, CumulativeWealth: 2500},
		{Month: anchor.AddMonths(3), MonthlyNetFlow: -300, CumulativeWealth: 2200},
	}
	s := Summarize(baseline, points, core.CNY)
	assert.Equal(t, 4, s.Horizon)
	assert.Equal(t, int64(2200), s.FinalWealth)
	assert.Equal(t, "¥22.00", s.FinalWealthDisplay)
	assert.Equal(t, int64(2500), s.MaxWealth)
	assert.Equal(t, int64(-1500), s.MinWealth)
	assert.Equal(t, int64(12000), s.AnnualizedIncome)
	assert.Equal(t, int64(24000), s.AnnualizedExpense)
	assert.Equal(t, int64(-12000), s.AnnualizedNetFlow)
	assert.InDelta(t, 5.0, s.ObligationShares.CreditCardCost, 1e-9)
	assert.InDelta(t, 50.0, s.ObligationShares.LoanPayments, 1e-9)
	assert.InDelta(t, 45.0, s.ObligationShares.RecurringExpenses, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(Baseline{Income: 500, NetFlow: 500}, nil, core.CNY)
	assert.Equal(t, 0, s.Horizon)
	assert.Equal(t, int64(0), s.FinalWealth)
	assert.Equal(t, int64(0), s.MaxWealth)
	assert.Equal(t, int64(0), s.MinWealth)
	assert.Equal(t, ObligationShares{}, s.ObligationShares)
}

func TestSummarizeFromProjection(t *testing.T) {
	p := newProjector(t)
	ds := scenario()
	b, err := p.Baseline(anchor, ds)
	require.NoError(t, err)
	points, err := p.Project(4, anchor, ds)
	require.NoError(t, err)

	s := Summarize(b, points, core.CNY)
	assert.Equal(t, int64(7000000), s.FinalWealth)
	assert.Equal(t, int64(7000000), s.MaxWealth)
	assert.Equal(t, int64(1500000), s.MinWealth)
	assert.InDelta(t, 100.0, s.ObligationShares.LoanPayments, 1e-9)
}
