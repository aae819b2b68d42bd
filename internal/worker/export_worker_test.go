package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/dataset"
	dsmemory "cashflow/internal/dataset/memory"
	"cashflow/internal/obligation"
	"cashflow/internal/sheets"
	sheetsmemory "cashflow/internal/sheets/memory"
)

var anchor = core.NewMonth(2025, time.August)

type failingSource struct{ err error }

func (f failingSource) Load(context.Context) (core.Dataset, error) { return core.Dataset{}, f.err }

type fixedSource struct{ ds core.Dataset }

func (f fixedSource) Load(context.Context) (core.Dataset, error) { return f.ds, nil }

type failingWriter struct{}

func (failingWriter) WriteProjection(context.Context, sheets.Export) (string, error) {
	return "", errors.New("quota exceeded")
}

func store() *dsmemory.Store {
	return dsmemory.New(core.Dataset{
		Incomes: []core.IncomeRecord{{
			ID:           "salary",
			Name:         "Salary",
			Amount:       core.NewMoney(500000, core.CNY),
			AmountInBase: core.NewMoney(500000, core.CNY),
			ExchangeRate: decimal.NewFromInt(1),
			Category:     core.IncomeSalary,
			IsActive:     true,
			IsRecurring:  true,
		}},
		Loans: []core.LoanRecord{{
			ID: "car", Name: "Car", LoanType: core.LoanConsumer,
			MonthlyPayment: 100000, RemainingBalance: 200000, RemainingTerms: core.Ints(2), IsActive: true,
		}},
	})
}

func newWorker(t *testing.T, src dataset.Source, w sheets.ProjectionWriter) *ExportWorker {
	t.Helper()
	calc, err := obligation.NewCalculator(obligation.DefaultOptions())
	require.NoError(t, err)
	return NewExportWorker(src, calc, w, Options{
		BaseCurrency:   core.CNY,
		DefaultHorizon: 6,
		MaxHorizon:     12,
		Anchor:         func() core.Month { return anchor },
	})
}

func TestHandleRefresh_UsesMessageParameters(t *testing.T) {
	writer := sheetsmemory.New()
	w := newWorker(t, store(), writer)

	msg := amqp.NewRefreshMessage(core.NewMonth(2025, time.September), 3, "test")
	require.NoError(t, w.HandleRefresh(context.Background(), msg))

	exports := writer.Exports()
	require.Len(t, exports, 1)
	e := exports[0]
	assert.Equal(t, msg.ID, e.MessageID)
	assert.Equal(t, core.NewMonth(2025, time.September), e.Anchor)
	require.Len(t, e.Points, 3)
	assert.Equal(t, []int64{400000, 400000, 500000}, []int64{e.Points[0].MonthlyNetFlow, e.Points[1].MonthlyNetFlow, e.Points[2].MonthlyNetFlow})
	assert.Equal(t, int64(1300000), e.Summary.FinalWealth)
}

func TestHandleRefresh_Defaults(t *testing.T) {
	writer := sheetsmemory.New()
	w := newWorker(t, store(), writer)

	require.NoError(t, w.HandleRefresh(context.Background(), &amqp.RefreshMessage{ID: "x"}))
	e := writer.Exports()[0]
	assert.Equal(t, anchor, e.Anchor)
	assert.Len(t, e.Points, 6)
}

func TestHandleRefresh_Failures(t *testing.T) {
	ctx := context.Background()

	err := newWorker(t, store(), sheetsmemory.New()).HandleRefresh(ctx, &amqp.RefreshMessage{Horizon: 13})
	assert.ErrorIs(t, err, amqp.ErrDiscard, "oversized horizon cannot succeed on retry")

	err = newWorker(t, failingSource{err: dataset.ErrInvalidData}, sheetsmemory.New()).HandleRefresh(ctx, &amqp.RefreshMessage{})
	assert.ErrorIs(t, err, amqp.ErrDiscard)

	err = newWorker(t, failingSource{err: errors.New("database is locked")}, sheetsmemory.New()).HandleRefresh(ctx, &amqp.RefreshMessage{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, amqp.ErrDiscard)

	err = newWorker(t, store(), failingWriter{}).HandleRefresh(ctx, &amqp.RefreshMessage{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, amqp.ErrDiscard)
}

func TestHandleRefresh_RejectsForeignBase(t *testing.T) {
	ds, err := store().Load(context.Background())
	require.NoError(t, err)
	ds.Incomes[0].AmountInBase = core.NewMoney(500000, core.USD)

	writer := sheetsmemory.New()
	err = newWorker(t, fixedSource{ds: ds}, writer).HandleRefresh(context.Background(), &amqp.RefreshMessage{})
	assert.ErrorIs(t, err, amqp.ErrDiscard)
	assert.ErrorIs(t, err, core.ErrBaseMismatch)
	assert.Empty(t, writer.Exports())
}

func TestStartupExport(t *testing.T) {
	writer := sheetsmemory.New()
	require.NoError(t, newWorker(t, store(), writer).StartupExport(context.Background()))
	require.Len(t, writer.Exports(), 1)
	assert.Empty(t, writer.Exports()[0].MessageID)

	err := newWorker(t, store(), failingWriter{}).StartupExport(context.Background())
	assert.ErrorContains(t, err, "startup export")
}
