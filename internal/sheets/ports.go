package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/forecast"
)

// Ports for outbound adapters.
type (
	// ProjectionWriter replaces the published projection with export and
	// returns a reference to where it was written.
	ProjectionWriter interface {
		WriteProjection(ctx context.Context, export Export) (ref string, err error)
	}
)

// Export is one projection run ready to be published.
type Export struct {
	MessageID   string
	Anchor      core.Month
	Currency    core.Currency
	GeneratedAt time.Time
	Points      []forecast.ProjectionPoint
	Summary     forecast.Summary
}

// Header is the first row written above the projection points.
var Header = []any{"Month", "Net flow", "Cumulative wealth"}

// Rows lays the export out as a values matrix: a header, one row per
// projected month, a blank spacer and the summary figures. Amounts are
// major units with two decimals so the sheet parses them as numbers.
func Rows(e Export) [][]any {
	rows := make([][]any, 0, len(e.Points)+8)
	rows = append(rows, Header)
	for _, p := range e.Points {
		rows = append(rows, []any{p.Month.String(), MajorUnits(p.MonthlyNetFlow), MajorUnits(p.CumulativeWealth)})
	}
	rows = append(rows,
		[]any{},
		[]any{"Anchor", e.Anchor.String(), string(e.Currency)},
		[]any{"Monthly income", MajorUnits(e.Summary.MonthlyIncome)},
		[]any{"Monthly obligations", MajorUnits(e.Summary.MonthlyObligations)},
		[]any{"Final wealth", MajorUnits(e.Summary.FinalWealth)},
		[]any{"Generated at", e.GeneratedAt.UTC().Format(time.RFC3339)},
	)
	return rows
}

// MajorUnits renders minor units as a fixed two-decimal string.
func MajorUnits(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
