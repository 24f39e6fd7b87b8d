// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
)

// RateSource returns the base-currency exchange rate for one unit of
// the given currency code.
type RateSource interface {
	GetRate(ctx context.Context, code string) (float64, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// TransactionStore persists ledger transactions. It must provide
// read-after-write consistency: sums reflect every previously committed
// transaction.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// SumByType returns the sum of amounts for one user and kind
	// (income or expense) over all persisted transactions.
	SumByType(ctx context.Context, userID, txType string) (float64, error)

	// SumCategoryInRange sums same-category transactions with a date
	// inside [from, to], inclusive.
	SumCategoryInRange(ctx context.Context, userID, category string, from, to time.Time) (float64, error)
}

// BudgetStore persists per-category budgets.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error)
	GetBudget(ctx context.Context, id string) (*domain.Budget, error)
	GetBudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
}

// GoalStore persists savings goals. IncrementSaved must be atomic at
// the storage level so concurrent accruals to the same goal cannot lose
// an update.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	GetGoal(ctx context.Context, id string) (*domain.Goal, error)
	GetGoalByCategory(ctx context.Context, userID, category string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	IncrementSaved(ctx context.Context, goalID string, delta float64) (*domain.Goal, error)
}

// RecurrenceStore persists recurrence schedules.
type RecurrenceStore interface {
	CreateRecurrence(ctx context.Context, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error)
	GetRecurrence(ctx context.Context, id string) (*domain.RecurrenceTransaction, error)
	ListRecurrences(ctx context.Context, userID string) ([]domain.RecurrenceTransaction, error)
	UpdateRecurrence(ctx context.Context, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error)
	DeleteRecurrence(ctx context.Context, id string) error

	// ListUpcoming returns schedules whose StartDate falls in [from, to].
	ListUpcoming(ctx context.Context, userID string, from, to time.Time) ([]domain.RecurrenceTransaction, error)
}

// UserStore persists account identities.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Store bundles every entity store. Implemented by the Supabase adapter
// (or any other persistence layer).
type Store interface {
	TransactionStore
	BudgetStore
	GoalStore
	RecurrenceStore
	UserStore
}
