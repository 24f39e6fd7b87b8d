package service

import (
	"context"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var goalTracer = otel.Tracer("service/goal")

// GoalEngine owns the two goal-side effects of posting: income accrual
// into a matching goal, and the advisory expense check against the
// remainder of the user's totalBalance after goal savings.
type GoalEngine struct {
	goals port.GoalStore
	users port.UserStore
}

// NewGoalEngine creates a goal accrual engine.
func NewGoalEngine(goals port.GoalStore, users port.UserStore) *GoalEngine {
	return &GoalEngine{goals: goals, users: users}
}

// AccrueIncome credits postedAmount to the goal matching (user,
// category), if any. The increment is atomic at the store; there is no
// upper clamp, so accrual can overshoot the target. Returns the
// updated goal, or nil when no goal matched.
func (e *GoalEngine) AccrueIncome(ctx context.Context, userID, category string, postedAmount float64) (*domain.Goal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalEngine.AccrueIncome")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("category", category),
	)

	goal, err := e.goals.GetGoalByCategory(ctx, userID, category)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	return e.goals.IncrementSaved(ctx, goal.ID, postedAmount)
}

// CheckExpenseAffordability warns when an expense exceeds what remains
// of the user's totalBalance after subtracting all goal savings. This
// is deliberately separate from the ledger-balance gate: it reads a
// different, rarely-populated balance source and is advisory only.
func (e *GoalEngine) CheckExpenseAffordability(ctx context.Context, userID string, postedAmount float64) (bool, error) {
	ctx, span := goalTracer.Start(ctx, "GoalEngine.CheckExpenseAffordability")
	defer span.End()

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}

	goals, err := e.goals.ListGoals(ctx, userID)
	if err != nil {
		return false, err
	}

	var saved float64
	for _, g := range goals {
		saved += g.SavedAmount
	}

	remaining := user.TotalBalance - saved
	return postedAmount > remaining, nil
}
