package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
)

var anchor = core.NewMonth(2025, time.January)

func constantLoan(payment int64, terms *int) core.LoanRecord {
	return core.LoanRecord{
		ID:               "loan",
		Name:             "Loan",
		LoanType:         core.LoanConsumer,
		MonthlyPayment:   payment,
		RemainingBalance: payment * 10,
		RemainingTerms:   terms,
		IsActive:         true,
	}
}

func floatingLoan(base, decrement int64, baseMonth core.Month) core.LoanRecord {
	l := constantLoan(999, nil)
	l.FloatingPayment = &core.FloatingPaymentPolicy{
		Enabled:          true,
		BasePayment:      base,
		MonthlyDecrement: decrement,
		BaseMonth:        baseMonth,
	}
	return l
}

func TestIsActiveInMonthTermsBoundary(t *testing.T) {
	for _, n := range []int{1, 2, 6, 12, 160} {
		l := constantLoan(100, core.Ints(n))
		assert.True(t, IsActiveInMonth(l, anchor, anchor.AddMonths(n-1)), "N=%d month N-1", n)
		assert.False(t, IsActiveInMonth(l, anchor, anchor.AddMonths(n)), "N=%d month N", n)
	}
}

func TestIsActiveInMonth(t *testing.T) {
	cases := []struct {
		name   string
		loan   core.LoanRecord
		target core.Month
		want   bool
	}{
		{"no terms is perpetual", constantLoan(100, nil), anchor.AddMonths(1000), true},
		{"zero terms never active", constantLoan(100, core.Ints(0)), anchor, false},
		{"before anchor", constantLoan(100, core.Ints(1)), anchor.AddMonths(-3), true},
		{"inactive", func() core.LoanRecord { l := constantLoan(100, nil); l.IsActive = false; return l }(), anchor, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsActiveInMonth(tc.loan, anchor, tc.target))
		})
	}
}

func TestEffectivePaymentFloating(t *testing.T) {
	l := floatingLoan(100, 30, core.Month{})
	cases := []struct {
		k    int
		want int64
	}{
		{-2, 100},
		{0, 100},
		{1, 70},
		{2, 40},
		{3, 10},
		{4, 0},
		{40, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EffectivePayment(l, anchor, anchor.AddMonths(tc.k)), "k=%d", tc.k)
	}
}

func TestEffectivePaymentFloatingHugeDecrement(t *testing.T) {
	l := floatingLoan(100, 1<<62, core.Month{})
	assert.Equal(t, int64(100), EffectivePayment(l, anchor, anchor))
	for _, k := range []int{1, 2, 4, 8} {
		assert.Equal(t, int64(0), EffectivePayment(l, anchor, anchor.AddMonths(k)), "k=%d", k)
	}

	exact := floatingLoan(90, 30, core.Month{})
	assert.Equal(t, int64(0), EffectivePayment(exact, anchor, anchor.AddMonths(3)))
	assert.Equal(t, int64(30), EffectivePayment(exact, anchor, anchor.AddMonths(2)))
}

func TestEffectivePaymentFloatingMonotonic(t *testing.T) {
	l := floatingLoan(1428800, 12345, core.Month{})
	prev := EffectivePayment(l, anchor, anchor)
	for k := 1; k < 200; k++ {
		cur := EffectivePayment(l, anchor, anchor.AddMonths(k))
		require.LessOrEqual(t, cur, prev, "k=%d", k)
		require.GreaterOrEqual(t, cur, int64(0))
		prev = cur
	}
	assert.Equal(t, int64(0), prev)
}

func TestEffectivePaymentUsesPolicyBaseMonth(t *testing.T) {
	l := floatingLoan(100, 30, anchor.AddMonths(2))
	assert.Equal(t, int64(100), EffectivePayment(l, anchor, anchor))
	assert.Equal(t, int64(100), EffectivePayment(l, anchor, anchor.AddMonths(2)))
	assert.Equal(t, int64(70), EffectivePayment(l, anchor, anchor.AddMonths(3)))
}

func TestEffectivePaymentDisabledPolicy(t *testing.T) {
	l := floatingLoan(100, 30, core.Month{})
	l.FloatingPayment.Enabled = false
	assert.Equal(t, int64(999), EffectivePayment(l, anchor, anchor.AddMonths(5)))
}

func TestEffectivePaymentInactive(t *testing.T) {
	l := constantLoan(500000, core.Ints(2))
	assert.Equal(t, int64(500000), EffectivePayment(l, anchor, anchor.AddMonths(1)))
	assert.Equal(t, int64(0), EffectivePayment(l, anchor, anchor.AddMonths(2)))

	f := floatingLoan(100, 10, core.Month{})
	f.RemainingTerms = core.Ints(1)
	assert.Equal(t, int64(0), EffectivePayment(f, anchor, anchor.AddMonths(1)))
}

func TestTotalPaymentForMonth(t *testing.T) {
	loans := []core.LoanRecord{
		constantLoan(500000, core.Ints(2)),
		constantLoan(100000, nil),
		floatingLoan(100, 30, core.Month{}),
	}
	assert.Equal(t, int64(600100), TotalPaymentForMonth(loans, anchor, anchor))
	assert.Equal(t, int64(600070), TotalPaymentForMonth(loans, anchor, anchor.AddMonths(1)))
	assert.Equal(t, int64(100040), TotalPaymentForMonth(loans, anchor, anchor.AddMonths(2)))
	assert.Equal(t, int64(0), TotalPaymentForMonth(nil, anchor, anchor))
}

func TestDebtToIncomeRatio(t *testing.T) {
	assert.Equal(t, 0.0, DebtToIncomeRatio(100, 0))
	assert.InDelta(t, 25.0, DebtToIncomeRatio(500000, 2000000), 1e-9)
}
