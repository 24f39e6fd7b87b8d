package service_test

import (
	"context"
	"testing"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/service"
)

func TestAccrueIncome_NoGoalIsNoOp(t *testing.T) {
	store := newMockStore()
	engine := service.NewGoalEngine(store, store)

	goal, err := engine.AccrueIncome(context.Background(), "user-1", "savings", 500)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if goal != nil {
		t.Errorf("expected nil goal, got %+v", goal)
	}
}

func TestAccrueIncome_CreditsMatchingGoal(t *testing.T) {
	store := newMockStore()
	store.goals = append(store.goals, domain.Goal{
		ID: "goal-1", UserID: "user-1", Category: "savings",
		TargetAmount: 10000, SavedAmount: 1000,
	})
	engine := service.NewGoalEngine(store, store)

	goal, err := engine.AccrueIncome(context.Background(), "user-1", "savings", 500)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if goal.SavedAmount != 1500 {
		t.Errorf("expected saved amount 1500, got %f", goal.SavedAmount)
	}
}

func TestAccrueIncome_CanOvershootTarget(t *testing.T) {
	store := newMockStore()
	store.goals = append(store.goals, domain.Goal{
		ID: "goal-1", UserID: "user-1", Category: "savings",
		TargetAmount: 1000, SavedAmount: 900,
	})
	engine := service.NewGoalEngine(store, store)

	goal, err := engine.AccrueIncome(context.Background(), "user-1", "savings", 500)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if goal.SavedAmount != 1400 {
		t.Errorf("accrual is not clamped to the target; expected 1400, got %f", goal.SavedAmount)
	}
}

func TestCheckExpenseAffordability(t *testing.T) {
	store := newMockStore()
	store.users["user-1"] = &domain.User{ID: "user-1", TotalBalance: 1000}
	store.goals = append(store.goals,
		domain.Goal{ID: "g1", UserID: "user-1", Category: "car", SavedAmount: 300},
		domain.Goal{ID: "g2", UserID: "user-1", Category: "house", SavedAmount: 200},
	)
	engine := service.NewGoalEngine(store, store)

	// Remaining after savings: 1000 - 500 = 500.
	warn, err := engine.CheckExpenseAffordability(context.Background(), "user-1", 400)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if warn {
		t.Error("400 against 500 remaining must not warn")
	}

	warn, err = engine.CheckExpenseAffordability(context.Background(), "user-1", 600)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !warn {
		t.Error("600 against 500 remaining must warn")
	}
}
