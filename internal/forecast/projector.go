// Package forecast projects monthly net cash flow and cumulative wealth
// over a horizon starting at an anchor month.
package forecast

import (
	"errors"
	"fmt"

	"cashflow/internal/core"
	"cashflow/internal/income"
	"cashflow/internal/obligation"
)

var ErrInvalidHorizon = errors.New("horizon must not be negative")

// ProjectionPoint is one month of a projection.
type ProjectionPoint struct {
	Month            core.Month `json:"month"`
	MonthlyNetFlow   int64      `json:"monthlyNetFlow"`
	CumulativeWealth int64      `json:"cumulativeWealth"`
}

// Baseline is the cash-flow picture of a single month.
type Baseline struct {
	Month       core.Month           `json:"month"`
	Income      int64                `json:"income"`
	Obligations obligation.Breakdown `json:"obligations"`
	NetFlow     int64                `json:"netFlow"`
}

// Projector produces projections. It keeps no state between calls and
// may be shared between goroutines.
type Projector struct {
	calc *obligation.Calculator
}

// NewProjector returns a Projector that prices obligations with calc.
func NewProjector(calc *obligation.Calculator) *Projector {
	return &Projector{calc: calc}
}

// Baseline computes income, obligations and net flow for the anchor month.
func (p *Projector) Baseline(anchor core.Month, ds core.Dataset) (Baseline, error) {
	return p.baselineFor(income.TotalMonthlyIncome(ds.Incomes), anchor, anchor, ds)
}

func (p *Projector) baselineFor(monthlyIncome int64, anchor, target core.Month, ds core.Dataset) (Baseline, error) {
	b, err := p.calc.Breakdown(ds.CreditCards, ds.Loans, ds.Expenses, anchor, target)
	if err != nil {
		return Baseline{}, fmt.Errorf("obligations for %s: %w", target, err)
	}
	return Baseline{
		Month:       target,
		Income:      monthlyIncome,
		Obligations: b,
		NetFlow:     monthlyIncome - b.Total,
	}, nil
}

// Project returns horizon points starting at anchor. Income is computed
// once; obligations are re-evaluated every month so loan maturities and
// floating payments are respected. A zero horizon yields an empty slice.
func (p *Projector) Project(horizon int, anchor core.Month, ds core.Dataset) ([]ProjectionPoint, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}
	monthlyIncome := income.TotalMonthlyIncome(ds.Incomes)
	points := make([]ProjectionPoint, 0, horizon)
	var cumulative int64
	for i := 0; i < horizon; i++ {
		target := anchor.AddMonths(i)
		b, err := p.baselineFor(monthlyIncome, anchor, target, ds)
		if err != nil {
			return nil, err
		}
		cumulative += b.NetFlow
		points = append(points, ProjectionPoint{
			Month:            target,
			MonthlyNetFlow:   b.NetFlow,
			CumulativeWealth: cumulative,
		})
	}
	return points, nil
}
