package core

// IncomeCategory classifies an income source.
type IncomeCategory string

const (
	IncomeSalary     IncomeCategory = "salary"
	IncomeFreelance  IncomeCategory = "freelance"
	IncomeRental     IncomeCategory = "rental"
	IncomeInvestment IncomeCategory = "investment"
	IncomeOther      IncomeCategory = "other"
)

func (c IncomeCategory) IsValid() bool {
	return c.DisplayName() != ""
}

func (c IncomeCategory) DisplayName() string {
	switch c {
	case IncomeSalary:
		return "Salary"
	case IncomeFreelance:
		return "Freelance"
	case IncomeRental:
		return "Rental"
	case IncomeInvestment:
		return "Investment"
	case IncomeOther:
		return "Other"
	default:
		return ""
	}
}

// ExpenseCategory classifies a recurring or living expense.
type ExpenseCategory string

const (
	ExpenseHousing        ExpenseCategory = "housing"
	ExpenseUtilities      ExpenseCategory = "utilities"
	ExpenseFood           ExpenseCategory = "food"
	ExpenseTransportation ExpenseCategory = "transportation"
	ExpenseEntertainment  ExpenseCategory = "entertainment"
	ExpenseSubscription   ExpenseCategory = "subscription"
	ExpenseOther          ExpenseCategory = "other"
)

func (c ExpenseCategory) IsValid() bool {
	return c.DisplayName() != ""
}

func (c ExpenseCategory) DisplayName() string {
	switch c {
	case ExpenseHousing:
		return "Housing"
	case ExpenseUtilities:
		return "Utilities"
	case ExpenseFood:
		return "Food"
	case ExpenseTransportation:
		return "Transportation"
	case ExpenseEntertainment:
		return "Entertainment"
	case ExpenseSubscription:
		return "Subscriptions"
	case ExpenseOther:
		return "Other"
	default:
		return ""
	}
}

// LoanType classifies a loan.
type LoanType string

const (
	LoanMortgage   LoanType = "mortgage"
	LoanConsumer   LoanType = "consumer"
	LoanBusiness   LoanType = "business"
	LoanCreditLine LoanType = "credit_line"
	LoanOther      LoanType = "other"
)

func (t LoanType) IsValid() bool {
	return t.DisplayName() != ""
}

func (t LoanType) DisplayName() string {
	switch t {
	case LoanMortgage:
		return "Mortgage"
	case LoanConsumer:
		return "Consumer loan"
	case LoanBusiness:
		return "Business loan"
	case LoanCreditLine:
		return "Credit line"
	case LoanOther:
		return "Other"
	default:
		return ""
	}
}

// Ledger tells which list an expense record was entered in. Both ledgers
// contribute to obligations identically.
type Ledger string

const (
	LedgerRecurring Ledger = "recurring"
	LedgerLiving    Ledger = "living"
)

func (l Ledger) IsValid() bool {
	return l == LedgerRecurring || l == LedgerLiving
}

func (l Ledger) DisplayName() string {
	switch l {
	case LedgerRecurring:
		return "Recurring expense"
	case LedgerLiving:
		return "Living expense"
	default:
		return ""
	}
}
