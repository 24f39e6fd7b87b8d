package service

import (
	"context"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var budgetsTracer = otel.Tracer("service/budgets")

// BudgetService is the single-entity CRUD around budgets.
type BudgetService struct {
	store  port.BudgetStore
	logger *zap.Logger
}

// NewBudgetService creates the budget CRUD service.
func NewBudgetService(store port.BudgetStore, logger *zap.Logger) *BudgetService {
	return &BudgetService{store: store, logger: logger}
}

// CreateBudget enforces at most one budget per (user, category) with
// an existence check before the insert. The check is not backed by a
// storage-level uniqueness constraint, so two concurrent creates can
// still race through it.
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetService.CreateBudget")
	defer span.End()

	if b.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if b.Limit <= 0 {
		return nil, &domain.ErrValidation{Field: "limit", Message: "must be positive"}
	}
	if b.Type != domain.BudgetDaily && b.Type != domain.BudgetMonthly {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be daily or monthly"}
	}

	existing, err := s.store.GetBudgetByCategory(ctx, userID, b.Category)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "budget already set for this category"}
	}

	b.ID = uuid.NewString()
	b.UserID = userID

	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget created",
		zap.String("budget_id", created.ID),
		zap.String("user_id", userID),
		zap.String("category", created.Category),
	)
	return created, nil
}

// ListBudgets returns all budgets for the user.
func (s *BudgetService) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetService.ListBudgets")
	defer span.End()

	return s.store.ListBudgets(ctx, userID)
}

// UpdateBudget mutates an owned budget's limit, type and window.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id string, patch *domain.Budget) (*domain.Budget, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetService.UpdateBudget")
	defer span.End()

	budget, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, &domain.ErrForbidden{Action: "update budget owned by another user"}
	}

	if patch.Limit > 0 {
		budget.Limit = patch.Limit
	}
	if patch.Type != "" {
		if patch.Type != domain.BudgetDaily && patch.Type != domain.BudgetMonthly {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be daily or monthly"}
		}
		budget.Type = patch.Type
	}
	if !patch.StartDate.IsZero() {
		budget.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		budget.EndDate = patch.EndDate
	}

	return s.store.UpdateBudget(ctx, budget)
}

// DeleteBudget removes an owned budget.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id string) error {
	ctx, span := budgetsTracer.Start(ctx, "BudgetService.DeleteBudget")
	defer span.End()

	budget, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return err
	}
	if budget.UserID != userID {
		return &domain.ErrForbidden{Action: "delete budget owned by another user"}
	}

	return s.store.DeleteBudget(ctx, id)
}
