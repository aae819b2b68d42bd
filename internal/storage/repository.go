package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/dataset"

	_ "modernc.org/sqlite"
)

// ImportRun records one successful dataset replacement.
type ImportRun struct {
	ID          int64
	ImportedAt  time.Time
	RecordCount int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Writers serialize on the file lock anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Replace implements dataset.Replacer.
func (r *SQLiteRepository) Replace(ctx context.Context, ds core.Dataset) error {
	_, err := r.ReplaceDataset(ctx, ds)
	return err
}

// ReplaceDataset validates ds and swaps every table's contents for it in a
// single transaction. Nothing is written when validation fails.
func (r *SQLiteRepository) ReplaceDataset(ctx context.Context, ds core.Dataset) (ImportRun, error) {
	if err := ds.Validate(); err != nil {
		return ImportRun{}, fmt.Errorf("%w: %w", dataset.ErrInvalidData, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportRun{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"income_sources", "loans", "credit_cards", "expenses"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return ImportRun{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertIncomes(ctx, tx, ds.Incomes); err != nil {
		return ImportRun{}, err
	}
	if err := insertLoans(ctx, tx, ds.Loans); err != nil {
		return ImportRun{}, err
	}
	if err := insertCards(ctx, tx, ds.CreditCards); err != nil {
		return ImportRun{}, err
	}
	if err := insertExpenses(ctx, tx, ds.Expenses); err != nil {
		return ImportRun{}, err
	}

	run := ImportRun{ImportedAt: time.Now().UTC(), RecordCount: ds.Len()}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_imports (imported_at, record_count) VALUES (?, ?)`,
		run.ImportedAt.Format(time.RFC3339Nano), run.RecordCount)
	if err != nil {
		return ImportRun{}, fmt.Errorf("record import: %w", err)
	}
	if run.ID, err = res.LastInsertId(); err != nil {
		return ImportRun{}, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportRun{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Dataset replaced in SQLite",
		"import_id", run.ID,
		"incomes", len(ds.Incomes),
		"loans", len(ds.Loans),
		"credit_cards", len(ds.CreditCards),
		"expenses", len(ds.Expenses))

	return run, nil
}

// LastImport returns the most recent import run, if any.
func (r *SQLiteRepository) LastImport(ctx context.Context) (ImportRun, bool, error) {
	var (
		run ImportRun
		at  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, imported_at, record_count FROM dataset_imports ORDER BY id DESC LIMIT 1`,
	).Scan(&run.ID, &at, &run.RecordCount)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRun{}, false, nil
	}
	if err != nil {
		return ImportRun{}, false, fmt.Errorf("get last import: %w", err)
	}
	if run.ImportedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return ImportRun{}, false, fmt.Errorf("parse import time: %w", err)
	}
	return run, true, nil
}

// Load implements dataset.Source. Records come back in import order.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Dataset, error) {
	var (
		ds  core.Dataset
		err error
	)
	if ds.Incomes, err = r.listIncomes(ctx); err != nil {
		return core.Dataset{}, err
	}
	if ds.Loans, err = r.listLoans(ctx); err != nil {
		return core.Dataset{}, err
	}
	if ds.CreditCards, err = r.listCards(ctx); err != nil {
		return core.Dataset{}, err
	}
	if ds.Expenses, err = r.listExpenses(ctx); err != nil {
		return core.Dataset{}, err
	}
	return ds, nil
}

func insertIncomes(ctx context.Context, tx *sql.Tx, records []core.IncomeRecord) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO income_sources
		(id, position, name, amount_minor, currency, base_minor, base_currency,
		 exchange_rate, category, description, is_active, is_recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare income insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID, i, rec.Name,
			rec.Amount.Minor, string(rec.Amount.Currency),
			rec.AmountInBase.Minor, string(rec.AmountInBase.Currency),
			rec.ExchangeRate.String(), string(rec.Category), rec.Description,
			rec.IsActive, rec.IsRecurring)
		if err != nil {
			return fmt.Errorf("insert income %q: %w", rec.ID, err)
		}
	}
	return nil
}

func insertLoans(ctx context.Context, tx *sql.Tx, records []core.LoanRecord) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO loans
		(id, position, name, bank_name, loan_type, principal, paid_principal,
		 monthly_payment, remaining_balance, remaining_terms, is_active,
		 has_floating_payment, floating_enabled, floating_base_payment,
		 floating_monthly_decrement, floating_base_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare loan insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range records {
		var terms sql.NullInt64
		if l.RemainingTerms != nil {
			terms = sql.NullInt64{Int64: int64(*l.RemainingTerms), Valid: true}
		}
		var fp core.FloatingPaymentPolicy
		if l.FloatingPayment != nil {
			fp = *l.FloatingPayment
		}
		baseMonth := ""
		if !fp.BaseMonth.IsZero() {
			baseMonth = fp.BaseMonth.String()
		}
		_, err := stmt.ExecContext(ctx,
			l.ID, i, l.Name, l.BankName, string(l.LoanType),
			l.Principal, l.PaidPrincipal, l.MonthlyPayment, l.RemainingBalance,
			terms, l.IsActive,
			l.FloatingPayment != nil, fp.Enabled, fp.BasePayment, fp.MonthlyDecrement, baseMonth)
		if err != nil {
			return fmt.Errorf("insert loan %q: %w", l.ID, err)
		}
	}
	return nil
}

func insertCards(ctx context.Context, tx *sql.Tx, records []core.CreditCard) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO credit_cards
		(id, position, card_number, bank_name, card_type, credit_limit,
		 annual_fee, cash_advance_rate, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare credit card insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range records {
		var rate sql.NullString
		if c.CashAdvanceRate != nil {
			rate = sql.NullString{String: c.CashAdvanceRate.String(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			c.ID, i, c.CardNumber, c.BankName, c.CardType,
			c.CreditLimit, c.AnnualFee, rate, c.IsActive)
		if err != nil {
			return fmt.Errorf("insert credit card %q: %w", c.ID, err)
		}
	}
	return nil
}

func insertExpenses(ctx context.Context, tx *sql.Tx, records []core.ExpenseRecord) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses
		(ledger, id, position, name, category, amount_minor, currency,
		 base_minor, base_currency, recurring_pattern, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare expense insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range records {
		_, err := stmt.ExecContext(ctx,
			string(e.Ledger), e.ID, i, e.Name, string(e.Category),
			e.Amount.Minor, string(e.Amount.Currency),
			e.AmountInBase.Minor, string(e.AmountInBase.Currency),
			string(e.RecurringPattern), e.IsActive)
		if err != nil {
			return fmt.Errorf("insert expense %q: %w", e.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) listIncomes(ctx context.Context) ([]core.IncomeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, amount_minor, currency,
		base_minor, base_currency, exchange_rate, category, description,
		is_active, is_recurring
		FROM income_sources ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeRecord
	for rows.Next() {
		var (
			rec                core.IncomeRecord
			cur, baseCur, rate string
			category           string
		)
		err := rows.Scan(&rec.ID, &rec.Name, &rec.Amount.Minor, &cur,
			&rec.AmountInBase.Minor, &baseCur, &rate, &category, &rec.Description,
			&rec.IsActive, &rec.IsRecurring)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		rec.Amount.Currency = core.Currency(cur)
		rec.AmountInBase.Currency = core.Currency(baseCur)
		rec.Category = core.IncomeCategory(category)
		if rec.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("income %q exchange rate: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) listLoans(ctx context.Context) ([]core.LoanRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, bank_name, loan_type,
		principal, paid_principal, monthly_payment, remaining_balance,
		remaining_terms, is_active, has_floating_payment, floating_enabled,
		floating_base_payment, floating_monthly_decrement, floating_base_month
		FROM loans ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []core.LoanRecord
	for rows.Next() {
		var (
			l           core.LoanRecord
			loanType    string
			terms       sql.NullInt64
			hasFloating bool
			fp          core.FloatingPaymentPolicy
			baseMonth   string
		)
		err := rows.Scan(&l.ID, &l.Name, &l.BankName, &loanType,
			&l.Principal, &l.PaidPrincipal, &l.MonthlyPayment, &l.RemainingBalance,
			&terms, &l.IsActive, &hasFloating, &fp.Enabled,
			&fp.BasePayment, &fp.MonthlyDecrement, &baseMonth)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		l.LoanType = core.LoanType(loanType)
		if terms.Valid {
			l.RemainingTerms = core.Ints(int(terms.Int64))
		}
		if hasFloating {
			if baseMonth != "" {
				if fp.BaseMonth, err = core.ParseMonth(baseMonth); err != nil {
					return nil, fmt.Errorf("loan %q base month: %w", l.ID, err)
				}
			}
			l.FloatingPayment = &fp
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) listCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, card_number, bank_name, card_type,
		credit_limit, annual_fee, cash_advance_rate, is_active
		FROM credit_cards ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		var (
			c    core.CreditCard
			rate sql.NullString
		)
		err := rows.Scan(&c.ID, &c.CardNumber, &c.BankName, &c.CardType,
			&c.CreditLimit, &c.AnnualFee, &rate, &c.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		if rate.Valid {
			d, err := decimal.NewFromString(rate.String)
			if err != nil {
				return nil, fmt.Errorf("credit card %q rate: %w", c.ID, err)
			}
			c.CashAdvanceRate = &d
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) listExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ledger, id, name, category,
		amount_minor, currency, base_minor, base_currency, recurring_pattern, is_active
		FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		var (
			e                                  core.ExpenseRecord
			ledger, category, cur, baseCur, rp string
		)
		err := rows.Scan(&ledger, &e.ID, &e.Name, &category,
			&e.Amount.Minor, &cur, &e.AmountInBase.Minor, &baseCur, &rp, &e.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Ledger = core.Ledger(ledger)
		e.Category = core.ExpenseCategory(category)
		e.Amount.Currency = core.Currency(cur)
		e.AmountInBase.Currency = core.Currency(baseCur)
		e.RecurringPattern = core.RecurringPattern(rp)
		out = append(out, e)
	}
	return out, rows.Err()
}
