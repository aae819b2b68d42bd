package fixtures

import (
	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

// File names read from a fixtures directory.
const (
	IncomeFile           = "incomeSources.json"
	LoanFile             = "loans.json"
	CreditCardFile       = "creditCards.json"
	LivingExpenseFile    = "livingExpenses.json"
	RecurringExpenseFile = "recurringExpenses.json"
)

// Amounts are minor units. Rates may be JSON numbers or strings.
type (
	incomeDTO struct {
		ID           string           `json:"id" validate:"required,notblank"`
		Name         string           `json:"name" validate:"required,notblank"`
		Amount       int64            `json:"amount" validate:"gte=0"`
		Currency     string           `json:"currency" validate:"required,currency"`
		AmountInBase *int64           `json:"amountInBase" validate:"omitempty,gte=0"`
		AmountInCNY  *int64           `json:"amountInCNY" validate:"omitempty,gte=0"`
		ExchangeRate *decimal.Decimal `json:"exchangeRate"`
		Category     string           `json:"category" validate:"required,oneof=salary freelance rental investment other"`
		Description  string           `json:"description"`
		IsActive     bool             `json:"isActive"`
		IsRecurring  bool             `json:"isRecurring"`
	}

	floatingPaymentDTO struct {
		Enabled          bool   `json:"enabled"`
		BasePayment      int64  `json:"basePayment" validate:"gte=0"`
		MonthlyDecrement int64  `json:"monthlyDecrement" validate:"gte=0"`
		BaseDate         string `json:"baseDate" validate:"omitempty,yearmonth"`
	}

	loanDTO struct {
		ID               string              `json:"id" validate:"required,notblank"`
		Name             string              `json:"name" validate:"required,notblank"`
		BankName         string              `json:"bankName"`
		LoanType         string              `json:"loanType" validate:"omitempty,oneof=mortgage consumer business credit_line other"`
		Principal        int64               `json:"principal" validate:"gte=0"`
		PaidPrincipal    int64               `json:"paidPrincipal" validate:"gte=0"`
		MonthlyPayment   int64               `json:"monthlyPayment" validate:"gte=0"`
		RemainingBalance int64               `json:"remainingBalance" validate:"gte=0"`
		RemainingTerms   *int                `json:"remainingTerms" validate:"omitempty,gte=0"`
		IsActive         bool                `json:"isActive"`
		FloatingPayment  *floatingPaymentDTO `json:"floatingPayment"`
	}

	creditCardDTO struct {
		ID              string           `json:"id" validate:"required,notblank"`
		CardNumber      string           `json:"cardNumber"`
		BankName        string           `json:"bankName"`
		CardType        string           `json:"cardType"`
		CreditLimit     int64            `json:"creditLimit" validate:"gte=0"`
		AnnualFee       int64            `json:"annualFee" validate:"gte=0"`
		CashAdvanceRate *decimal.Decimal `json:"cashAdvanceRate"`
		IsActive        bool             `json:"isActive"`
	}

	expenseDTO struct {
		ID               string `json:"id" validate:"required,notblank"`
		Name             string `json:"name" validate:"required,notblank"`
		Category         string `json:"category" validate:"required,oneof=housing utilities food transportation entertainment subscription other"`
		Amount           int64  `json:"amount" validate:"gte=0"`
		Currency         string `json:"currency" validate:"required,currency"`
		AmountInBase     *int64 `json:"amountInBase" validate:"omitempty,gte=0"`
		AmountInCNY      *int64 `json:"amountInCNY" validate:"omitempty,gte=0"`
		RecurringPattern string `json:"recurringPattern" validate:"required,oneof=monthly weekly yearly"`
		IsActive         bool   `json:"isActive"`
	}
)

// baseAmount returns the precomputed base amount, preferring amountInBase
// over the older amountInCNY field.
func baseAmount(inBase, inCNY *int64, base core.Currency) *int64 {
	if inBase != nil {
		return inBase
	}
	if inCNY != nil && base == core.CNY {
		return inCNY
	}
	return nil
}
