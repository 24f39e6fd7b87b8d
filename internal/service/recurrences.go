package service

import (
	"context"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var recurTracer = otel.Tracer("service/recurrences")

// upcomingWindow is how far ahead the upcoming listing looks.
const upcomingWindow = 48 * time.Hour

var validRecurrences = map[string]bool{
	domain.RecurDaily:   true,
	domain.RecurWeekly:  true,
	domain.RecurMonthly: true,
	domain.RecurYearly:  true,
}

// RecurrenceService manages recurrence schedules. Schedules are pure
// metadata: nothing materializes them into ledger transactions.
type RecurrenceService struct {
	store  port.RecurrenceStore
	now    func() time.Time
	logger *zap.Logger
}

// NewRecurrenceService creates the recurrence service. now is
// injectable for deterministic upcoming-window tests.
func NewRecurrenceService(store port.RecurrenceStore, now func() time.Time, logger *zap.Logger) *RecurrenceService {
	if now == nil {
		now = time.Now
	}
	return &RecurrenceService{store: store, now: now, logger: logger}
}

// CreateRecurrence persists a new schedule.
func (s *RecurrenceService) CreateRecurrence(ctx context.Context, userID string, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error) {
	ctx, span := recurTracer.Start(ctx, "RecurrenceService.CreateRecurrence")
	defer span.End()

	if r.Type != domain.TxIncome && r.Type != domain.TxExpense {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if r.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if r.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if !validRecurrences[r.Recurrence] {
		return nil, &domain.ErrValidation{Field: "recurrence", Message: "must be Daily, Weekly, Monthly or Yearly"}
	}
	if r.StartDate.IsZero() {
		return nil, &domain.ErrValidation{Field: "start_date", Message: "required"}
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return nil, &domain.ErrValidation{Field: "end_date", Message: "must not precede start_date"}
	}

	r.ID = uuid.NewString()
	r.UserID = userID
	r.CreatedAt = s.now()

	created, err := s.store.CreateRecurrence(ctx, r)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recurrence created",
		zap.String("recurrence_id", created.ID),
		zap.String("user_id", userID),
		zap.String("recurrence", created.Recurrence),
	)
	return created, nil
}

// ListRecurrences returns all of the user's schedules.
func (s *RecurrenceService) ListRecurrences(ctx context.Context, userID string) ([]domain.RecurrenceTransaction, error) {
	ctx, span := recurTracer.Start(ctx, "RecurrenceService.ListRecurrences")
	defer span.End()

	return s.store.ListRecurrences(ctx, userID)
}

// ListUpcoming returns schedules whose start date falls within the next
// two days.
func (s *RecurrenceService) ListUpcoming(ctx context.Context, userID string) ([]domain.RecurrenceTransaction, error) {
	ctx, span := recurTracer.Start(ctx, "RecurrenceService.ListUpcoming")
	defer span.End()

	now := s.now()
	return s.store.ListUpcoming(ctx, userID, now, now.Add(upcomingWindow))
}

// UpdateRecurrence mutates an owned schedule.
func (s *RecurrenceService) UpdateRecurrence(ctx context.Context, userID, id string, patch *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error) {
	ctx, span := recurTracer.Start(ctx, "RecurrenceService.UpdateRecurrence")
	defer span.End()

	rec, err := s.store.GetRecurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, &domain.ErrForbidden{Action: "update recurrence owned by another user"}
	}

	if patch.Type != "" {
		if patch.Type != domain.TxIncome && patch.Type != domain.TxExpense {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
		}
		rec.Type = patch.Type
	}
	if patch.Amount > 0 {
		rec.Amount = patch.Amount
	}
	if patch.Category != "" {
		rec.Category = patch.Category
	}
	if patch.Tags != nil {
		rec.Tags = patch.Tags
	}
	if patch.Recurrence != "" {
		if !validRecurrences[patch.Recurrence] {
			return nil, &domain.ErrValidation{Field: "recurrence", Message: "must be Daily, Weekly, Monthly or Yearly"}
		}
		rec.Recurrence = patch.Recurrence
	}
	if !patch.StartDate.IsZero() {
		rec.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		rec.EndDate = patch.EndDate
	}

	return s.store.UpdateRecurrence(ctx, rec)
}

// DeleteRecurrence removes an owned schedule.
func (s *RecurrenceService) DeleteRecurrence(ctx context.Context, userID, id string) error {
	ctx, span := recurTracer.Start(ctx, "RecurrenceService.DeleteRecurrence")
	defer span.End()

	rec, err := s.store.GetRecurrence(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return &domain.ErrForbidden{Action: "delete recurrence owned by another user"}
	}

	return s.store.DeleteRecurrence(ctx, id)
}
