package service

import (
	"context"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var budgetTracer = otel.Tracer("service/budget")

// BudgetEvaluator is the advisory budget-overage check that runs after
// a transaction is persisted. Its result never blocks a posting and
// its failures are swallowed by the orchestrator.
type BudgetEvaluator struct {
	budgets      port.BudgetStore
	transactions port.TransactionStore
	now          func() time.Time
}

// NewBudgetEvaluator creates a budget evaluator. now is injectable for
// deterministic daily-window tests.
func NewBudgetEvaluator(budgets port.BudgetStore, transactions port.TransactionStore, now func() time.Time) *BudgetEvaluator {
	if now == nil {
		now = time.Now
	}
	return &BudgetEvaluator{budgets: budgets, transactions: transactions, now: now}
}

// CheckBudget reports whether spending in the category, including the
// just-posted amount, exceeds the budget limit. No budget for the
// (user, category) pair is a no-op, not an error.
func (e *BudgetEvaluator) CheckBudget(ctx context.Context, userID, category string, postedAmount float64) (bool, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetEvaluator.CheckBudget")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("category", category),
	)

	budget, err := e.budgets.GetBudgetByCategory(ctx, userID, category)
	if err != nil {
		return false, err
	}
	if budget == nil {
		return false, nil
	}

	from, to := e.window(budget)
	spent, err := e.transactions.SumCategoryInRange(ctx, userID, category, from, to)
	if err != nil {
		return false, err
	}

	return spent+postedAmount > budget.Limit, nil
}

// window returns the active budget window: the current local day for
// daily budgets, the configured start/end for monthly ones.
func (e *BudgetEvaluator) window(b *domain.Budget) (time.Time, time.Time) {
	if b.Type == domain.BudgetDaily {
		now := e.now()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
		return start, end
	}
	return b.StartDate, b.EndDate
}
