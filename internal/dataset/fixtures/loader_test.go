package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
	"cashflow/internal/currency"
	"cashflow/internal/dataset"
	"cashflow/internal/income"
)

func newConverter(t *testing.T) *currency.Converter {
	t.Helper()
	conv, err := currency.NewConverter(core.CNY, currency.DefaultRates())
	require.NoError(t, err)
	return conv
}

func TestLoadValidFixtures(t *testing.T) {
	ds, err := NewLoader(filepath.Join("testdata", "valid"), newConverter(t)).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Incomes, 3)
	salary := ds.Incomes[0]
	assert.Equal(t, core.NewMoney(3000000, core.HKD), salary.Amount)
	assert.Equal(t, core.NewMoney(2760000, core.CNY), salary.AmountInBase)
	assert.True(t, salary.ExchangeRate.Equal(decimal.RequireFromString("0.92")))
	assert.Equal(t, int64(3210000), income.TotalMonthlyIncome(ds.Incomes))

	require.Len(t, ds.Loans, 3)
	consumer := ds.Loans[1]
	assert.Equal(t, core.LoanOther, consumer.LoanType)
	require.NotNil(t, consumer.FloatingPayment)
	assert.Equal(t, core.NewMonth(2025, time.August), consumer.FloatingPayment.BaseMonth)
	assert.Nil(t, ds.Loans[2].RemainingTerms)
	require.NotNil(t, ds.Loans[0].RemainingTerms)
	assert.Equal(t, 160, *ds.Loans[0].RemainingTerms)

	require.Len(t, ds.CreditCards, 3)
	assert.Nil(t, ds.CreditCards[0].CashAdvanceRate)
	require.NotNil(t, ds.CreditCards[1].CashAdvanceRate)
	assert.True(t, ds.CreditCards[1].CashAdvanceRate.Equal(decimal.RequireFromString("0.005")))

	require.Len(t, ds.Expenses, 3)
	assert.Equal(t, "recurring-insurance", ds.Expenses[0].ID)
	assert.Equal(t, core.LedgerRecurring, ds.Expenses[0].Ledger)
	assert.Equal(t, core.LedgerLiving, ds.Expenses[2].Ledger)
	assert.Equal(t, core.NewMoney(46000, core.CNY), ds.Expenses[2].AmountInBase)
	assert.Equal(t, core.Weekly, ds.Expenses[2].RecurringPattern)
}

func TestLoadMissingDirectoryIsEmpty(t *testing.T) {
	ds, err := NewLoader(t.TempDir(), newConverter(t)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestLoadInvalidFixtures(t *testing.T) {
	_, err := NewLoader(filepath.Join("testdata", "invalid"), newConverter(t)).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrInvalidData)
}

func TestLoadReportsEveryBadRecord(t *testing.T) {
	dir := t.TempDir()
	src, err := os.ReadFile(filepath.Join("testdata", "invalid", "loans.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LoanFile), src, 0o644))

	_, err = NewLoader(dir, newConverter(t)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loans.json[0]")
	assert.Contains(t, err.Error(), "loans.json[1]")
	assert.Contains(t, err.Error(), "LoanType must be one of")
	assert.Contains(t, err.Error(), "ID is required")
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IncomeFile), []byte(`{"id": `), 0o644))

	_, err := NewLoader(dir, newConverter(t)).Load(context.Background())
	assert.ErrorIs(t, err, dataset.ErrInvalidData)
}

func TestLoadMissingRate(t *testing.T) {
	dir := t.TempDir()
	body := `[{"id":"x","name":"USD job","amount":100,"currency":"USD","category":"salary","isActive":true,"isRecurring":true}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, IncomeFile), []byte(body), 0o644))

	_, err := NewLoader(dir, newConverter(t)).Load(context.Background())
	assert.ErrorIs(t, err, currency.ErrMissingRate)
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(filepath.Join("testdata", "valid"), newConverter(t)).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseBaseMonth(t *testing.T) {
	m, err := parseBaseMonth("2025-08")
	require.NoError(t, err)
	assert.Equal(t, "2025-08", m.String())

	m, err = parseBaseMonth("2025-08-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-08", m.String())

	_, err = parseBaseMonth("Aug 2025")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}
