package sheets

import (
	"testing"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/forecast"
)

func TestMajorUnits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{123456, "1234.56"},
		{-150, "-1.50"},
	}
	for _, tt := range tests {
		if got := MajorUnits(tt.in); got != tt.want {
			t.Errorf("MajorUnits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRows(t *testing.T) {
	anchor := core.NewMonth(2025, time.August)
	e := Export{
		Anchor:      anchor,
		Currency:    core.CNY,
		GeneratedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
		Points: []forecast.ProjectionPoint{
			{Month: anchor.AddMonths(1), MonthlyNetFlow: 100000, CumulativeWealth: 100000},
			{Month: anchor.AddMonths(2), MonthlyNetFlow: 100000, CumulativeWealth: 200000},
		},
		Summary: forecast.Summary{MonthlyIncome: 500000, MonthlyObligations: 400000, FinalWealth: 200000},
	}

	rows := Rows(e)
	if len(rows) != 1+2+6 {
		t.Fatalf("unexpected row count %d", len(rows))
	}
	if rows[1][0] != "2025-09" || rows[2][2] != "2000.00" {
		t.Errorf("unexpected point rows: %v %v", rows[1], rows[2])
	}
	if rows[7][1] != "2000.00" {
		t.Errorf("unexpected final wealth row: %v", rows[7])
	}
	if rows[8][1] != "2025-08-01T09:00:00Z" {
		t.Errorf("unexpected generated-at row: %v", rows[8])
	}
}
