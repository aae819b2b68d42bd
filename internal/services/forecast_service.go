package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/dataset"
	"cashflow/internal/expense"
	"cashflow/internal/forecast"
	"cashflow/internal/income"
	"cashflow/internal/loan"
	"cashflow/internal/log"
	"cashflow/internal/obligation"
)

var (
	ErrHorizonTooLarge = errors.New("horizon exceeds the configured maximum")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrNoSchedule      = loan.ErrNoSchedule
)

const datasetKey = "dataset"

// ForecastOptions configures a ForecastService.
type ForecastOptions struct {
	BaseCurrency core.Currency
	MaxHorizon   int
	CacheTTL     time.Duration
}

// LoanReport is the loan portfolio view for one month.
type LoanReport struct {
	Anchor             core.Month        `json:"anchor"`
	Analysis           loan.Analysis     `json:"analysis"`
	PaymentThisMonth   int64             `json:"paymentThisMonth"`
	DebtToIncomeRatio  float64           `json:"debtToIncomeRatio"`
	UpcomingMaturities []core.LoanRecord `json:"upcomingMaturities"`
}

// CardReport lists credit-card carrying costs.
type CardReport struct {
	Cards            []obligation.CardCost `json:"cards"`
	TotalMonthlyCost int64                 `json:"totalMonthlyCost"`
	TotalCreditLimit int64                 `json:"totalCreditLimit"`
}

// ExpenseReport is the expense overview with the largest items and an
// inflation outlook.
type ExpenseReport struct {
	Analysis             expense.Analysis         `json:"analysis"`
	Top                  []expense.Item           `json:"top"`
	ExpenseToIncomeRatio float64                  `json:"expenseToIncomeRatio"`
	Inflation            []expense.InflationPoint `json:"inflation"`
}

// ForecastService answers projection queries over the current dataset.
// The loaded record snapshot is cached; results are recomputed per call.
type ForecastService struct {
	source     dataset.Source
	calc       *obligation.Calculator
	projector  *forecast.Projector
	base       core.Currency
	maxHorizon int
	snapshots  *cache.LRUCache[core.Dataset]
	logger     *log.Logger

	// generation counts invalidations; a load started under an older
	// generation must not be cached.
	mu         sync.Mutex
	generation uint64
}

func NewForecastService(source dataset.Source, calc *obligation.Calculator, opts ForecastOptions, logger *log.Logger) *ForecastService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = core.CNY
	}
	return &ForecastService{
		source:     source,
		calc:       calc,
		projector:  forecast.NewProjector(calc),
		base:       opts.BaseCurrency,
		maxHorizon: opts.MaxHorizon,
		snapshots:  cache.NewLRUCache[core.Dataset](1, opts.CacheTTL),
		logger:     logger.WithComponent(log.ComponentProjection),
	}
}

// SnapshotCache exposes the snapshot cache for registration with a
// cache.Manager.
func (s *ForecastService) SnapshotCache() *cache.LRUCache[core.Dataset] {
	return s.snapshots
}

// Invalidate drops the cached snapshot so the next call reloads it.
// Loads already in flight still return their result but do not cache it.
func (s *ForecastService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.snapshots.Purge()
}

// Dataset returns the current record snapshot.
func (s *ForecastService) Dataset(ctx context.Context) (core.Dataset, error) {
	if ds, ok := s.snapshots.Get(datasetKey); ok {
		return ds, nil
	}
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	ds, err := s.source.Load(ctx)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	if err := dataset.CheckBase(ds, s.base); err != nil {
		return core.Dataset{}, err
	}
	s.mu.Lock()
	if s.generation == gen {
		s.snapshots.Set(datasetKey, ds)
	}
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "Dataset snapshot loaded", log.FieldRecordCount, ds.Len())
	return ds, nil
}

func (s *ForecastService) checkHorizon(horizon int) error {
	if horizon < 0 {
		return forecast.ErrInvalidHorizon
	}
	if s.maxHorizon > 0 && horizon > s.maxHorizon {
		return fmt.Errorf("%w: %d > %d", ErrHorizonTooLarge, horizon, s.maxHorizon)
	}
	return nil
}

// Projection projects horizon months from anchor.
func (s *ForecastService) Projection(ctx context.Context, anchor core.Month, horizon int) ([]forecast.ProjectionPoint, error) {
	if err := s.checkHorizon(horizon); err != nil {
		return nil, err
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.projector.Project(horizon, anchor, ds)
}

// Baseline returns the anchor month's income, obligations and net flow.
func (s *ForecastService) Baseline(ctx context.Context, anchor core.Month) (forecast.Baseline, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return forecast.Baseline{}, err
	}
	return s.projector.Baseline(anchor, ds)
}

// Summary projects and condenses the result into headline figures.
func (s *ForecastService) Summary(ctx context.Context, anchor core.Month, horizon int) (forecast.Summary, error) {
	if err := s.checkHorizon(horizon); err != nil {
		return forecast.Summary{}, err
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return forecast.Summary{}, err
	}
	baseline, err := s.projector.Baseline(anchor, ds)
	if err != nil {
		return forecast.Summary{}, err
	}
	points, err := s.projector.Project(horizon, anchor, ds)
	if err != nil {
		return forecast.Summary{}, err
	}
	summary := forecast.Summarize(baseline, points, s.base)
	s.logger.InfoContext(ctx, "Projection summarized",
		log.NewFields().WithProjection(anchor.String(), horizon, summary.FinalWealth).ToSlice()...)
	return summary, nil
}

// IncomeSummary aggregates the contributing income records.
func (s *ForecastService) IncomeSummary(ctx context.Context) (income.Summary, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return income.Summary{}, err
	}
	return income.Summarize(ds.Incomes), nil
}

// LoanAnalysis describes the loan portfolio as of anchor. Loans with at
// most threshold remaining terms are listed as upcoming maturities.
func (s *ForecastService) LoanAnalysis(ctx context.Context, anchor core.Month, threshold int) (LoanReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return LoanReport{}, err
	}
	payment := loan.TotalPaymentForMonth(ds.Loans, anchor, anchor)
	return LoanReport{
		Anchor:             anchor,
		Analysis:           loan.Analyze(ds.Loans),
		PaymentThisMonth:   payment,
		DebtToIncomeRatio:  loan.DebtToIncomeRatio(payment, income.TotalMonthlyIncome(ds.Incomes)),
		UpcomingMaturities: loan.UpcomingMaturities(ds.Loans, threshold),
	}, nil
}

// LoanForecast returns the repayment schedule of one loan.
func (s *ForecastService) LoanForecast(ctx context.Context, id string, anchor core.Month, months int) (*loan.Schedule, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range ds.Loans {
		if l.ID != id {
			continue
		}
		return loan.Forecast(l, anchor, months)
	}
	return nil, fmt.Errorf("%w: %s", ErrLoanNotFound, id)
}

// CardCosts prices every active card.
func (s *ForecastService) CardCosts(ctx context.Context) (CardReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return CardReport{}, err
	}
	return CardReport{
		Cards:            s.calc.CardCosts(ds.CreditCards),
		TotalMonthlyCost: s.calc.TotalCardCost(ds.CreditCards),
		TotalCreditLimit: obligation.TotalCreditLimit(ds.CreditCards),
	}, nil
}

// ExpenseAnalysis breaks expenses down and lists the top n items. The
// inflation outlook covers inflationMonths at annualRate.
func (s *ForecastService) ExpenseAnalysis(ctx context.Context, top, inflationMonths int, annualRate decimal.Decimal) (ExpenseReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return ExpenseReport{}, err
	}
	analysis, err := expense.Analyze(ds.Expenses)
	if err != nil {
		return ExpenseReport{}, err
	}
	items, err := expense.Top(ds.Expenses, top)
	if err != nil {
		return ExpenseReport{}, err
	}
	outlook, err := expense.ForecastInflation(ds.Expenses, inflationMonths, annualRate)
	if err != nil {
		return ExpenseReport{}, err
	}
	return ExpenseReport{
		Analysis:             analysis,
		Top:                  items,
		ExpenseToIncomeRatio: expense.ExpenseToIncomeRatio(analysis.TotalMonthly, income.TotalMonthlyIncome(ds.Incomes)),
		Inflation:            outlook,
	}, nil
}
