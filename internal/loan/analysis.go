package loan

import (
	"sort"

	"cashflow/internal/core"
)

// TypeBreakdown aggregates active loans of one type.
type TypeBreakdown struct {
	Count                 int   `json:"count"`
	TotalPrincipal        int64 `json:"totalPrincipal"`
	TotalMonthlyPayment   int64 `json:"totalMonthlyPayment"`
	TotalRemainingBalance int64 `json:"totalRemainingBalance"`
}

// PaymentShare is one loan's share of the total monthly payment.
type PaymentShare struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	MonthlyPayment   int64   `json:"monthlyPayment"`
	RemainingBalance int64   `json:"remainingBalance"`
	Percentage       float64 `json:"percentage"`
}

// Analysis describes the structure of the active loan portfolio using
// nominal monthly payments.
type Analysis struct {
	ActiveLoanCount       int                             `json:"activeLoanCount"`
	TotalMonthlyPayment   int64                           `json:"totalMonthlyPayment"`
	TotalRemainingDebt    int64                           `json:"totalRemainingDebt"`
	TotalPrincipal        int64                           `json:"totalPrincipal"`
	TotalPaidPrincipal    int64                           `json:"totalPaidPrincipal"`
	RepaymentProgress     float64                         `json:"repaymentProgress"`
	ByType                map[core.LoanType]TypeBreakdown `json:"byType"`
	ByMonthlyPayment      []PaymentShare                  `json:"byMonthlyPayment"`
	LargestLoan           *PaymentShare                   `json:"largestLoan,omitempty"`
	AverageMonthlyPayment int64                           `json:"averageMonthlyPayment"`
}

// Analyze summarizes active loans.
func Analyze(loans []core.LoanRecord) Analysis {
	a := Analysis{ByType: make(map[core.LoanType]TypeBreakdown)}
	active := make([]core.LoanRecord, 0, len(loans))
	for _, l := range loans {
		if !l.IsActive {
			continue
		}
		active = append(active, l)
		a.TotalMonthlyPayment += l.MonthlyPayment
		a.TotalRemainingDebt += l.RemainingBalance
		a.TotalPrincipal += l.Principal
		a.TotalPaidPrincipal += l.PaidPrincipal

		b := a.ByType[l.LoanType]
		b.Count++
		b.TotalPrincipal += l.Principal
		b.TotalMonthlyPayment += l.MonthlyPayment
		b.TotalRemainingBalance += l.RemainingBalance
		a.ByType[l.LoanType] = b
	}
	a.ActiveLoanCount = len(active)
	a.RepaymentProgress = core.Percentage(a.TotalPaidPrincipal, a.TotalPrincipal)
	if len(active) > 0 {
		a.AverageMonthlyPayment = a.TotalMonthlyPayment / int64(len(active))
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MonthlyPayment > active[j].MonthlyPayment
	})
	a.ByMonthlyPayment = make([]PaymentShare, 0, len(active))
	for _, l := range active {
		share := PaymentShare{
			ID:               l.ID,
			Name:             l.Name,
			MonthlyPayment:   l.MonthlyPayment,
			RemainingBalance: l.RemainingBalance,
			Percentage:       core.Percentage(l.MonthlyPayment, a.TotalMonthlyPayment),
		}
		a.ByMonthlyPayment = append(a.ByMonthlyPayment, share)
	}
	if len(a.ByMonthlyPayment) > 0 {
		largest := a.ByMonthlyPayment[0]
		a.LargestLoan = &largest
	}
	return a
}

// UpcomingMaturities returns active loans with known terms of at most
// threshold months, soonest first.
func UpcomingMaturities(loans []core.LoanRecord, threshold int) []core.LoanRecord {
	var out []core.LoanRecord
	for _, l := range loans {
		if l.IsActive && l.RemainingTerms != nil && *l.RemainingTerms <= threshold {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].RemainingTerms < *out[j].RemainingTerms
	})
	return out
}
