package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
)

func TestForecastStopsAtTerms(t *testing.T) {
	l := constantLoan(1000, core.Ints(3))
	l.RemainingBalance = 10000

	s, err := Forecast(l, anchor, DefaultForecastMonths)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Period)
	require.Len(t, s.Installments, 3)
	assert.Equal(t, int64(3000), s.TotalPayments)
	assert.Equal(t, int64(7000), s.FinalRemainingBalance)
	assert.False(t, s.Completed)
	assert.Equal(t, anchor.AddMonths(2), s.Installments[2].Month)
	assert.Equal(t, 0, s.Installments[2].RemainingTerms)
}

func TestForecastStopsWhenRepaid(t *testing.T) {
	l := constantLoan(1000, core.Ints(12))
	l.RemainingBalance = 2500

	s, err := Forecast(l, anchor, 24)
	require.NoError(t, err)
	require.Len(t, s.Installments, 3)
	assert.Equal(t, int64(500), s.Installments[2].Payment)
	assert.Equal(t, int64(2500), s.TotalPayments)
	assert.Equal(t, int64(0), s.FinalRemainingBalance)
	assert.True(t, s.Completed)
}

func TestForecastStopsAtMonths(t *testing.T) {
	l := constantLoan(1000, core.Ints(12))
	l.RemainingBalance = 100000

	s, err := Forecast(l, anchor, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Period)
	assert.Len(t, s.Installments, 4)
	assert.Equal(t, int64(96000), s.FinalRemainingBalance)
}

func TestForecastFloatingPayment(t *testing.T) {
	l := floatingLoan(100, 30, core.Month{})
	l.RemainingTerms = core.Ints(6)
	l.RemainingBalance = 1000

	s, err := Forecast(l, anchor, 6)
	require.NoError(t, err)
	var payments []int64
	for _, in := range s.Installments {
		payments = append(payments, in.Payment)
	}
	assert.Equal(t, []int64{100, 70, 40, 10, 0, 0}, payments)
	assert.Equal(t, int64(780), s.FinalRemainingBalance)
}

func TestForecastNoSchedule(t *testing.T) {
	s, err := Forecast(constantLoan(1000, nil), anchor, 12)
	require.ErrorIs(t, err, ErrNoSchedule)
	assert.Nil(t, s)

	inactive := constantLoan(1000, core.Ints(3))
	inactive.IsActive = false
	s, err = Forecast(inactive, anchor, 12)
	require.ErrorIs(t, err, ErrNoSchedule)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), inactive.ID)

	_, err = Forecast(constantLoan(1000, core.Ints(3)), anchor, -1)
	assert.ErrorIs(t, err, ErrInvalidMonths)
}
