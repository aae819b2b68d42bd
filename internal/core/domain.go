package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// IncomeRecord is a source of income. AmountInBase is the amount
	// already converted to the base currency at ExchangeRate.
	IncomeRecord struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Amount       Money           `json:"amount"`
		AmountInBase Money           `json:"amountInBase"`
		ExchangeRate decimal.Decimal `json:"exchangeRate"`
		Category     IncomeCategory  `json:"category"`
		Description  string          `json:"description,omitempty"`
		IsActive     bool            `json:"isActive"`
		IsRecurring  bool            `json:"isRecurring"`
	}

	// FloatingPaymentPolicy makes a loan installment decrease linearly
	// by MonthlyDecrement every month from BaseMonth, floored at zero.
	FloatingPaymentPolicy struct {
		Enabled          bool  `json:"enabled"`
		BasePayment      int64 `json:"basePayment"`
		MonthlyDecrement int64 `json:"monthlyDecrement"`
		BaseMonth        Month `json:"baseMonth"`
	}

	// LoanRecord is a loan being repaid. Amounts are base currency minor units.
	// A nil RemainingTerms means the loan has no known end.
	LoanRecord struct {
		ID               string                 `json:"id"`
		Name             string                 `json:"name"`
		BankName         string                 `json:"bankName,omitempty"`
		LoanType         LoanType               `json:"loanType"`
		Principal        int64                  `json:"principal"`
		PaidPrincipal    int64                  `json:"paidPrincipal"`
		MonthlyPayment   int64                  `json:"monthlyPayment"`
		RemainingBalance int64                  `json:"remainingBalance"`
		RemainingTerms   *int                   `json:"remainingTerms"`
		IsActive         bool                   `json:"isActive"`
		FloatingPayment  *FloatingPaymentPolicy `json:"floatingPayment,omitempty"`
	}

	// CreditCard is a credit line used as a cash-flow source. A nil
	// CashAdvanceRate means the configured default applies.
	CreditCard struct {
		ID              string           `json:"id"`
		CardNumber      string           `json:"cardNumber"`
		BankName        string           `json:"bankName"`
		CardType        string           `json:"cardType,omitempty"`
		CreditLimit     int64            `json:"creditLimit"`
		AnnualFee       int64            `json:"annualFee"`
		CashAdvanceRate *decimal.Decimal `json:"cashAdvanceRate,omitempty"`
		IsActive        bool             `json:"isActive"`
	}

	// ExpenseRecord is a recurring cost normalized to a monthly equivalent.
	ExpenseRecord struct {
		ID               string           `json:"id"`
		Name             string           `json:"name"`
		Ledger           Ledger           `json:"ledger"`
		Category         ExpenseCategory  `json:"category"`
		Amount           Money            `json:"amount"`
		AmountInBase     Money            `json:"amountInBase"`
		RecurringPattern RecurringPattern `json:"recurringPattern"`
		IsActive         bool             `json:"isActive"`
	}

	// Dataset is a read-only snapshot of every record the calculators consume.
	Dataset struct {
		Incomes     []IncomeRecord  `json:"incomes"`
		Loans       []LoanRecord    `json:"loans"`
		CreditCards []CreditCard    `json:"creditCards"`
		Expenses    []ExpenseRecord `json:"expenses"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidRate     = errors.New("invalid rate")
	ErrEmptyID         = errors.New("empty id")
	ErrEmptyName       = errors.New("empty name")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrUnknownPattern  = errors.New("unknown recurring pattern")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownLoanType = errors.New("unknown loan type")
	ErrUnknownLedger   = errors.New("unknown ledger")
	ErrNegativeTerms   = errors.New("negative remaining terms")
	ErrBaseMismatch    = errors.New("amount in base is not in the base currency")
)

// Ints returns a pointer to n, for optional term counts.
func Ints(n int) *int {
	return &n
}

func validateIdentity(id, name string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if err := validateIdentity(r.ID, r.Name); err != nil {
		return err
	}
	if err := r.Amount.Validate(); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if err := r.AmountInBase.Validate(); err != nil {
		return fmt.Errorf("amount in base: %w", err)
	}
	if !r.ExchangeRate.IsPositive() {
		return ErrInvalidRate
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(r.Category))
	}
	return nil
}

func (p FloatingPaymentPolicy) Validate() error {
	if p.BasePayment < 0 || p.MonthlyDecrement < 0 {
		return ErrInvalidAmount
	}
	if !p.BaseMonth.IsZero() {
		if err := p.BaseMonth.Validate(); err != nil {
			return fmt.Errorf("base month: %w", err)
		}
	}
	return nil
}

func (l LoanRecord) Validate() error {
	if err := validateIdentity(l.ID, l.Name); err != nil {
		return err
	}
	if l.Principal < 0 || l.PaidPrincipal < 0 || l.MonthlyPayment < 0 || l.RemainingBalance < 0 {
		return ErrInvalidAmount
	}
	if l.RemainingTerms != nil && *l.RemainingTerms < 0 {
		return ErrNegativeTerms
	}
	if !l.LoanType.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownLoanType, string(l.LoanType))
	}
	if l.FloatingPayment != nil {
		if err := l.FloatingPayment.Validate(); err != nil {
			return fmt.Errorf("floating payment: %w", err)
		}
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if c.CreditLimit < 0 || c.AnnualFee < 0 {
		return ErrInvalidAmount
	}
	if c.CashAdvanceRate != nil && c.CashAdvanceRate.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}

func (e ExpenseRecord) Validate() error {
	if err := validateIdentity(e.ID, e.Name); err != nil {
		return err
	}
	if !e.Ledger.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownLedger, string(e.Ledger))
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(e.Category))
	}
	if !e.RecurringPattern.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPattern, string(e.RecurringPattern))
	}
	if err := e.Amount.Validate(); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if err := e.AmountInBase.Validate(); err != nil {
		return fmt.Errorf("amount in base: %w", err)
	}
	return nil
}

// Validate checks every record and joins the failures, each prefixed
// with the record kind and ID. Base amounts must share one currency.
func (d Dataset) Validate() error {
	var errs []error
	for _, r := range d.Incomes {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("income %q: %w", r.ID, err))
		}
	}
	for _, l := range d.Loans {
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("loan %q: %w", l.ID, err))
		}
	}
	for _, c := range d.CreditCards {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("credit card %q: %w", c.ID, err))
		}
	}
	for _, e := range d.Expenses {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("expense %q: %w", e.ID, err))
		}
	}
	if base, ok := d.firstBase(); ok {
		if err := d.ValidateBase(base); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d Dataset) firstBase() (Currency, bool) {
	if len(d.Incomes) > 0 {
		return d.Incomes[0].AmountInBase.Currency, true
	}
	if len(d.Expenses) > 0 {
		return d.Expenses[0].AmountInBase.Currency, true
	}
	return "", false
}

// ValidateBase checks that every precomputed base amount is denominated
// in base. Calculators sum those amounts directly, so a snapshot converted
// under another base currency must be rejected.
func (d Dataset) ValidateBase(base Currency) error {
	var errs []error
	for _, r := range d.Incomes {
		if r.AmountInBase.Currency != base {
			errs = append(errs, fmt.Errorf("income %q: %w: %s, want %s", r.ID, ErrBaseMismatch, r.AmountInBase.Currency, base))
		}
	}
	for _, e := range d.Expenses {
		if e.AmountInBase.Currency != base {
			errs = append(errs, fmt.Errorf("expense %q: %w: %s, want %s", e.ID, ErrBaseMismatch, e.AmountInBase.Currency, base))
		}
	}
	return errors.Join(errs...)
}

// Len returns the total number of records.
func (d Dataset) Len() int {
	return len(d.Incomes) + len(d.Loans) + len(d.CreditCards) + len(d.Expenses)
}

// Clone returns a deep copy of d, so callers cannot mutate a shared snapshot.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Incomes:     append([]IncomeRecord(nil), d.Incomes...),
		Loans:       make([]LoanRecord, len(d.Loans)),
		CreditCards: make([]CreditCard, len(d.CreditCards)),
		Expenses:    append([]ExpenseRecord(nil), d.Expenses...),
	}
	for i, l := range d.Loans {
		if l.RemainingTerms != nil {
			l.RemainingTerms = Ints(*l.RemainingTerms)
		}
		if l.FloatingPayment != nil {
			fp := *l.FloatingPayment
			l.FloatingPayment = &fp
		}
		out.Loans[i] = l
	}
	for i, c := range d.CreditCards {
		if c.CashAdvanceRate != nil {
			r := *c.CashAdvanceRate
			c.CashAdvanceRate = &r
		}
		out.CreditCards[i] = c
	}
	return out
}

// Percentage returns part as a percentage of total, or 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
