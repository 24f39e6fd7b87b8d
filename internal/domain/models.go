// Package domain holds the core entities and error types of the
// personal-finance tracker: users, ledger transactions, budgets,
// savings goals and recurrence schedules.
package domain

import "time"

// Transaction kinds.
const (
	TxIncome  = "income"
	TxExpense = "expense"
)

// Budget window types.
const (
	BudgetDaily   = "daily"
	BudgetMonthly = "monthly"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Recurrence cadences.
const (
	RecurDaily   = "Daily"
	RecurWeekly  = "Weekly"
	RecurMonthly = "Monthly"
	RecurYearly  = "Yearly"
)

// Transaction is one posted ledger entry. Amount is always expressed in
// the ledger's base currency; OriginalAmount/OriginalCurrency are kept
// for audit only when a conversion occurred at posting time.
type Transaction struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Type             string    `json:"type"` // income | expense
	Amount           float64   `json:"amount"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags,omitempty"`
	OriginalAmount   *float64  `json:"original_amount,omitempty"`
	OriginalCurrency string    `json:"original_currency,omitempty"`
	Date             time.Time `json:"date"`
}

// Budget is a per-category spending cap for one user. StartDate/EndDate
// are only meaningful for monthly budgets; daily budgets window on the
// server's current day.
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	Type      string    `json:"type"` // daily | monthly
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Goal is a savings target in one category. SavedAmount starts at zero
// and is only increased by income postings in the matching category.
// It is not clamped to TargetAmount; accrual can overshoot.
type Goal struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	TargetAmount float64 `json:"target_amount"`
	SavedAmount  float64 `json:"saved_amount"`
}

// User is an account identity. TotalBalance is an out-of-band ceiling
// used only by the advisory goal-affordability check; it is rarely
// populated and independent of the computed ledger balance.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // user | admin
	TotalBalance float64   `json:"total_balance,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecurrenceTransaction describes a schedule, not a ledger entry.
// Nothing in the system materializes these into Transactions.
type RecurrenceTransaction struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Type       string     `json:"type"`
	Amount     float64    `json:"amount"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags,omitempty"`
	Recurrence string     `json:"recurrence"` // Daily | Weekly | Monthly | Yearly
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreateTransactionRequest is the posting input. Currency defaults to
// the base currency when absent.
type CreateTransactionRequest struct {
	Type     string   `json:"type"`
	Amount   float64  `json:"amount"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Currency string   `json:"currency"`
}

// UpdateTransactionRequest carries optional fields for a transaction
// update. A non-empty Currency re-triggers conversion of Amount, but an
// update never re-runs budget checks or goal accrual.
type UpdateTransactionRequest struct {
	Type     string   `json:"type"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Currency string   `json:"currency"`
}

// PostingResult is returned to the caller after a successful posting.
// Balance is the snapshot taken before the transaction was persisted.
type PostingResult struct {
	Transaction *Transaction `json:"transaction"`
	Balance     float64      `json:"balance"`
}

// TransactionFilter narrows transaction listings and reports.
type TransactionFilter struct {
	Type     string
	Category string
	Tags     []string
	From     time.Time
	To       time.Time
}

// LedgerBalance is the computed state of one user's ledger.
type LedgerBalance struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}
