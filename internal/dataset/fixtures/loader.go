// Package fixtures loads a dataset from the dashboard's JSON fixture
// files, validating every record at the boundary.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cashflow/internal/core"
	"cashflow/internal/currency"
	"cashflow/internal/dataset"
)

// Loader reads fixtures from a directory. Missing files are treated as
// empty collections.
type Loader struct {
	dir  string
	conv *currency.Converter
}

// NewLoader returns a Loader for dir. conv fills in base amounts and
// exchange rates that the files leave out.
func NewLoader(dir string, conv *currency.Converter) *Loader {
	return &Loader{dir: dir, conv: conv}
}

// Dir returns the fixtures directory.
func (l *Loader) Dir() string { return l.dir }

// Load reads and validates every fixture file concurrently.
func (l *Loader) Load(ctx context.Context) (core.Dataset, error) {
	var (
		ds        core.Dataset
		living    []core.ExpenseRecord
		recurring []core.ExpenseRecord
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Incomes, err = loadFile(ctx, l.path(IncomeFile), l.income)
		return err
	})
	g.Go(func() (err error) {
		ds.Loans, err = loadFile(ctx, l.path(LoanFile), loan)
		return err
	})
	g.Go(func() (err error) {
		ds.CreditCards, err = loadFile(ctx, l.path(CreditCardFile), creditCard)
		return err
	})
	g.Go(func() (err error) {
		living, err = loadFile(ctx, l.path(LivingExpenseFile), l.expense(core.LedgerLiving))
		return err
	})
	g.Go(func() (err error) {
		recurring, err = loadFile(ctx, l.path(RecurringExpenseFile), l.expense(core.LedgerRecurring))
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dataset{}, err
	}

	ds.Expenses = append(recurring, living...)
	if err := ds.Validate(); err != nil {
		return core.Dataset{}, fmt.Errorf("%w: %w", dataset.ErrInvalidData, err)
	}
	return ds, nil
}

func (l *Loader) path(name string) string {
	return filepath.Join(l.dir, name)
}

// loadFile decodes a JSON array of D and converts every element. All
// record failures are reported together.
func loadFile[D any, R any](ctx context.Context, path string, convert func(D) (R, error)) ([]R, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var dtos []D
	if err := json.Unmarshal(b, &dtos); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", dataset.ErrInvalidData, filepath.Base(path), err)
	}
	out := make([]R, 0, len(dtos))
	var errs []error
	for i, d := range dtos {
		if err := validateStruct(d); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", filepath.Base(path), i, err))
			continue
		}
		r, err := convert(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", filepath.Base(path), i, err))
			continue
		}
		out = append(out, r)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", dataset.ErrInvalidData, errors.Join(errs...))
	}
	return out, nil
}

func (l *Loader) income(d incomeDTO) (core.IncomeRecord, error) {
	cur, err := core.ParseCurrency(d.Currency)
	if err != nil {
		return core.IncomeRecord{}, err
	}
	amount := core.NewMoney(d.Amount, cur)
	inBase, err := l.toBase(amount, baseAmount(d.AmountInBase, d.AmountInCNY, l.conv.Base()))
	if err != nil {
		return core.IncomeRecord{}, err
	}
	rate, err := l.rate(cur, d.ExchangeRate)
	if err != nil {
		return core.IncomeRecord{}, err
	}
	return core.IncomeRecord{
		ID:           d.ID,
		Name:         d.Name,
		Amount:       amount,
		AmountInBase: inBase,
		ExchangeRate: rate,
		Category:     core.IncomeCategory(d.Category),
		Description:  d.Description,
		IsActive:     d.IsActive,
		IsRecurring:  d.IsRecurring,
	}, nil
}

func (l *Loader) expense(ledger core.Ledger) func(expenseDTO) (core.ExpenseRecord, error) {
	return func(d expenseDTO) (core.ExpenseRecord, error) {
		cur, err := core.ParseCurrency(d.Currency)
		if err != nil {
			return core.ExpenseRecord{}, err
		}
		amount := core.NewMoney(d.Amount, cur)
		inBase, err := l.toBase(amount, baseAmount(d.AmountInBase, d.AmountInCNY, l.conv.Base()))
		if err != nil {
			return core.ExpenseRecord{}, err
		}
		return core.ExpenseRecord{
			ID:               d.ID,
			Name:             d.Name,
			Ledger:           ledger,
			Category:         core.ExpenseCategory(d.Category),
			Amount:           amount,
			AmountInBase:     inBase,
			RecurringPattern: core.RecurringPattern(d.RecurringPattern),
			IsActive:         d.IsActive,
		}, nil
	}
}

func loan(d loanDTO) (core.LoanRecord, error) {
	lt := core.LoanType(d.LoanType)
	if lt == "" {
		lt = core.LoanOther
	}
	r := core.LoanRecord{
		ID:               d.ID,
		Name:             d.Name,
		BankName:         d.BankName,
		LoanType:         lt,
		Principal:        d.Principal,
		PaidPrincipal:    d.PaidPrincipal,
		MonthlyPayment:   d.MonthlyPayment,
		RemainingBalance: d.RemainingBalance,
		RemainingTerms:   d.RemainingTerms,
		IsActive:         d.IsActive,
	}
	if fp := d.FloatingPayment; fp != nil {
		policy := &core.FloatingPaymentPolicy{
			Enabled:          fp.Enabled,
			BasePayment:      fp.BasePayment,
			MonthlyDecrement: fp.MonthlyDecrement,
		}
		if fp.BaseDate != "" {
			m, err := parseBaseMonth(fp.BaseDate)
			if err != nil {
				return core.LoanRecord{}, err
			}
			policy.BaseMonth = m
		}
		r.FloatingPayment = policy
	}
	return r, nil
}

func creditCard(d creditCardDTO) (core.CreditCard, error) {
	return core.CreditCard{
		ID:              d.ID,
		CardNumber:      d.CardNumber,
		BankName:        d.BankName,
		CardType:        d.CardType,
		CreditLimit:     d.CreditLimit,
		AnnualFee:       d.AnnualFee,
		CashAdvanceRate: d.CashAdvanceRate,
		IsActive:        d.IsActive,
	}, nil
}

func (l *Loader) toBase(amount core.Money, precomputed *int64) (core.Money, error) {
	if precomputed != nil {
		return core.NewMoney(*precomputed, l.conv.Base()), nil
	}
	return l.conv.ToBase(amount)
}

func (l *Loader) rate(cur core.Currency, given *decimal.Decimal) (decimal.Decimal, error) {
	if given != nil {
		return *given, nil
	}
	return l.conv.Rate(cur)
}
