package service

import (
	"context"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var goalsTracer = otel.Tracer("service/goals")

// GoalService is the CRUD surface around savings goals. The accrual
// side lives in GoalEngine.
type GoalService struct {
	store  port.GoalStore
	logger *zap.Logger
}

// NewGoalService creates the goal CRUD service.
func NewGoalService(store port.GoalStore, logger *zap.Logger) *GoalService {
	return &GoalService{store: store, logger: logger}
}

// CreateGoal persists a new goal. SavedAmount always starts at zero;
// the only path that increases it is income accrual.
func (s *GoalService) CreateGoal(ctx context.Context, userID string, g *domain.Goal) (*domain.Goal, error) {
	ctx, span := goalsTracer.Start(ctx, "GoalService.CreateGoal")
	defer span.End()

	if g.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if g.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if g.TargetAmount <= 0 {
		return nil, &domain.ErrValidation{Field: "target_amount", Message: "must be positive"}
	}

	g.ID = uuid.NewString()
	g.UserID = userID
	g.SavedAmount = 0

	created, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return nil, err
	}

	s.logger.Info("goal created",
		zap.String("goal_id", created.ID),
		zap.String("user_id", userID),
		zap.String("category", created.Category),
		zap.Float64("target_amount", created.TargetAmount),
	)
	return created, nil
}

// ListGoals returns all goals for the user.
func (s *GoalService) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	ctx, span := goalsTracer.Start(ctx, "GoalService.ListGoals")
	defer span.End()

	return s.store.ListGoals(ctx, userID)
}

// UpdateGoal mutates an owned goal's name, category and target.
// SavedAmount cannot be set through an update.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, id string, patch *domain.Goal) (*domain.Goal, error) {
	ctx, span := goalsTracer.Start(ctx, "GoalService.UpdateGoal")
	defer span.End()

	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, &domain.ErrForbidden{Action: "update goal owned by another user"}
	}

	if patch.Name != "" {
		goal.Name = patch.Name
	}
	if patch.Category != "" {
		goal.Category = patch.Category
	}
	if patch.TargetAmount > 0 {
		goal.TargetAmount = patch.TargetAmount
	}

	return s.store.UpdateGoal(ctx, goal)
}

// DeleteGoal removes an owned goal. Accrued savings disappear with it;
// the transactions that funded them are untouched.
func (s *GoalService) DeleteGoal(ctx context.Context, userID, id string) error {
	ctx, span := goalsTracer.Start(ctx, "GoalService.DeleteGoal")
	defer span.End()

	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return &domain.ErrForbidden{Action: "delete goal owned by another user"}
	}

	return s.store.DeleteGoal(ctx, id)
}
