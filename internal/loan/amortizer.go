// Package loan decides when loans are being repaid and how much they
// cost in a given month. Every "months since" computation is measured
// from a caller-supplied anchor month so all loans share one clock.
package loan

import "cashflow/internal/core"

// IsActiveInMonth reports whether l is still being repaid in target.
// A loan without RemainingTerms never matures.
func IsActiveInMonth(l core.LoanRecord, anchor, target core.Month) bool {
	if !l.IsActive {
		return false
	}
	if l.RemainingTerms == nil {
		return true
	}
	return core.MonthsSince(anchor, target) < *l.RemainingTerms
}

// EffectivePayment returns the installment due for l in target, never
// negative. Under an enabled floating policy the payment decreases by
// MonthlyDecrement per month from the policy's base month (the anchor
// when unset); targets before the base month pay BasePayment.
func EffectivePayment(l core.LoanRecord, anchor, target core.Month) int64 {
	if !IsActiveInMonth(l, anchor, target) {
		return 0
	}
	p := l.FloatingPayment
	if p == nil || !p.Enabled {
		return l.MonthlyPayment
	}
	ref := p.BaseMonth
	if ref.IsZero() {
		ref = anchor
	}
	k := core.MonthsSince(ref, target)
	if k < 0 {
		return p.BasePayment
	}
	// k*MonthlyDecrement could wrap for very large decrements
	if d := p.MonthlyDecrement; d > 0 && int64(k) > p.BasePayment/d {
		return 0
	}
	return max(p.BasePayment-int64(k)*p.MonthlyDecrement, 0)
}

// TotalPaymentForMonth sums EffectivePayment over loans.
func TotalPaymentForMonth(loans []core.LoanRecord, anchor, target core.Month) int64 {
	var total int64
	for _, l := range loans {
		total += EffectivePayment(l, anchor, target)
	}
	return total
}

// TotalRemainingDebt sums the remaining balance of active loans.
func TotalRemainingDebt(loans []core.LoanRecord) int64 {
	var total int64
	for _, l := range loans {
		if l.IsActive {
			total += l.RemainingBalance
		}
	}
	return total
}

// DebtToIncomeRatio returns payment as a percentage of income, 0 when
// there is no income.
func DebtToIncomeRatio(payment, income int64) float64 {
	if income <= 0 {
		return 0
	}
	return core.Percentage(payment, income)
}
