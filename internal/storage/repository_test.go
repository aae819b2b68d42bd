package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
	"cashflow/internal/dataset"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "cashflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func fixture() core.Dataset {
	rate := decimal.RequireFromString("0.005")
	return core.Dataset{
		Incomes: []core.IncomeRecord{{
			ID:           "income-salary",
			Name:         "Salary",
			Amount:       core.NewMoney(3000000, core.HKD),
			AmountInBase: core.NewMoney(2760000, core.CNY),
			ExchangeRate: decimal.RequireFromString("0.92"),
			Category:     core.IncomeSalary,
			IsActive:     true,
			IsRecurring:  true,
		}},
		Loans: []core.LoanRecord{
			{
				ID:               "loan-consumer",
				Name:             "Consumer loan",
				LoanType:         core.LoanConsumer,
				MonthlyPayment:   1428800,
				RemainingBalance: 4000000,
				RemainingTerms:   core.Ints(3),
				IsActive:         true,
				FloatingPayment: &core.FloatingPaymentPolicy{
					Enabled:          true,
					BasePayment:      1428800,
					MonthlyDecrement: 100000,
					BaseMonth:        core.NewMonth(2025, time.August),
				},
			},
			{
				ID:             "loan-line",
				Name:           "Credit line",
				LoanType:       core.LoanCreditLine,
				MonthlyPayment: 50000,
				IsActive:       true,
			},
		},
		CreditCards: []core.CreditCard{
			{ID: "card-a0", CardNumber: "A0", BankName: "CMB", CreditLimit: 10000000, AnnualFee: 120000, IsActive: true},
			{ID: "card-a5", CardNumber: "A5", BankName: "BOC", CreditLimit: 5000000, CashAdvanceRate: &rate, IsActive: true},
		},
		Expenses: []core.ExpenseRecord{
			{
				ID:               "insurance",
				Name:             "Insurance",
				Ledger:           core.LedgerRecurring,
				Category:         core.ExpenseOther,
				Amount:           core.NewMoney(1200000, core.CNY),
				AmountInBase:     core.NewMoney(1200000, core.CNY),
				RecurringPattern: core.Yearly,
				IsActive:         true,
			},
			{
				ID:               "groceries",
				Name:             "Groceries",
				Ledger:           core.LedgerLiving,
				Category:         core.ExpenseFood,
				Amount:           core.NewMoney(50000, core.HKD),
				AmountInBase:     core.NewMoney(46000, core.CNY),
				RecurringPattern: core.Weekly,
				IsActive:         false,
			},
		},
	}
}

func TestReplaceAndLoadRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	want := fixture()

	run, err := repo.ReplaceDataset(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, want.Len(), run.RecordCount)
	assert.NotZero(t, run.ID)

	got, err := repo.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Incomes, 1)
	assert.True(t, got.Incomes[0].ExchangeRate.Equal(want.Incomes[0].ExchangeRate))
	got.Incomes[0].ExchangeRate = want.Incomes[0].ExchangeRate
	assert.Equal(t, want.Incomes, got.Incomes)

	assert.Equal(t, want.Loans, got.Loans)

	require.Len(t, got.CreditCards, 2)
	assert.Nil(t, got.CreditCards[0].CashAdvanceRate)
	require.NotNil(t, got.CreditCards[1].CashAdvanceRate)
	assert.True(t, got.CreditCards[1].CashAdvanceRate.Equal(decimal.RequireFromString("0.005")))

	assert.Equal(t, want.Expenses, got.Expenses)
}

func TestReplaceOverwritesPreviousDataset(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, fixture()))
	smaller := fixture()
	smaller.Loans = smaller.Loans[:1]
	smaller.Expenses = nil
	require.NoError(t, repo.Replace(ctx, smaller))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Loans, 1)
	assert.Empty(t, got.Expenses)

	run, ok, err := repo.LastImport(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), run.ID)
	assert.Equal(t, smaller.Len(), run.RecordCount)
}

func TestReplaceRejectsInvalidDataset(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Replace(ctx, fixture()))

	bad := fixture()
	bad.Expenses[0].RecurringPattern = "daily"
	err := repo.Replace(ctx, bad)
	assert.ErrorIs(t, err, dataset.ErrInvalidData)
	assert.ErrorIs(t, err, core.ErrUnknownPattern)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Yearly, got.Expenses[0].RecurringPattern)
}

func TestEmptyDatabase(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	ds, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())

	_, ok, err := repo.LastImport(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, repo.Ping(ctx))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashflow.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Replace(context.Background(), fixture()))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	ds, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixture().Len(), ds.Len())
}
