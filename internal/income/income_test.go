package income

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"cashflow/internal/core"
)

func record(id string, cur core.Currency, orig, base int64, cat core.IncomeCategory, active, recurring bool) core.IncomeRecord {
	return core.IncomeRecord{
		ID:           id,
		Name:         id,
		Amount:       core.NewMoney(orig, cur),
		AmountInBase: core.NewMoney(base, core.CNY),
		Category:     cat,
		IsActive:     active,
		IsRecurring:  recurring,
	}
}

func sample() []core.IncomeRecord {
	return []core.IncomeRecord{
		record("salary", core.HKD, 1000000, 920000, core.IncomeSalary, true, true),
		record("rent", core.CNY, 300000, 300000, core.IncomeRental, true, true),
		record("bonus", core.CNY, 500000, 500000, core.IncomeSalary, true, false),
		record("old-job", core.CNY, 700000, 700000, core.IncomeSalary, false, true),
		record("side", core.HKD, 200000, 184000, core.IncomeFreelance, true, true),
	}
}

func TestTotalMonthlyIncome(t *testing.T) {
	assert.Equal(t, int64(0), TotalMonthlyIncome(nil))
	assert.Equal(t, int64(0), TotalMonthlyIncome([]core.IncomeRecord{}))
	assert.Equal(t, int64(1404000), TotalMonthlyIncome(sample()))
	assert.Equal(t, int64(1404000*12), AnnualIncome(sample()))
}

func TestTotalMonthlyIncomeOrderIndependent(t *testing.T) {
	records := sample()
	want := TotalMonthlyIncome(records)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		r.Shuffle(len(records), func(a, b int) { records[a], records[b] = records[b], records[a] })
		assert.Equal(t, want, TotalMonthlyIncome(records))
	}
}

func TestGroupByCurrency(t *testing.T) {
	groups := GroupByCurrency(sample())
	assert.Len(t, groups, 2)

	hkd := groups[core.HKD]
	assert.Equal(t, int64(1104000), hkd.TotalAmountInBase)
	assert.Equal(t, int64(1200000), hkd.TotalOriginalAmount)
	assert.Equal(t, 2, hkd.MemberCount)
	assert.InDelta(t, 78.632, hkd.Percentage, 0.001)

	cny := groups[core.CNY]
	assert.Equal(t, int64(300000), cny.TotalAmountInBase)
	assert.Equal(t, 1, cny.MemberCount)
	assert.InDelta(t, 100, hkd.Percentage+cny.Percentage, 1e-9)
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(sample())
	assert.Len(t, groups, 3)
	assert.Equal(t, 1, groups[core.IncomeSalary].MemberCount)
	assert.Equal(t, int64(184000), groups[core.IncomeFreelance].TotalAmountInBase)
	_, ok := groups[core.IncomeOther]
	assert.False(t, ok)
}

func TestGroupPercentageZeroTotal(t *testing.T) {
	records := []core.IncomeRecord{record("zero", core.CNY, 0, 0, core.IncomeOther, true, true)}
	groups := GroupByCategory(records)
	assert.Equal(t, 0.0, groups[core.IncomeOther].Percentage)
	assert.Equal(t, 0.0, core.Percentage(10, 0))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	assert.Equal(t, int64(1404000), s.MonthlyTotal)
	assert.Equal(t, int64(16848000), s.AnnualTotal)
	assert.Equal(t, 4, s.ActiveCount)
	assert.Len(t, s.ByCurrency, 2)
	assert.Len(t, s.ByCategory, 3)
}
