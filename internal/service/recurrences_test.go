package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"go.uber.org/zap"
)

type upcomingRecordingStore struct {
	mockStore
	from, to time.Time
}

func (s *upcomingRecordingStore) ListUpcoming(_ context.Context, _ string, from, to time.Time) ([]domain.RecurrenceTransaction, error) {
	s.from, s.to = from, to
	return nil, nil
}

func TestCreateRecurrence_Validation(t *testing.T) {
	svc := service.NewRecurrenceService(newMockStore(), nil, zap.NewNop())
	start := time.Now()
	end := start.Add(-time.Hour)

	cases := []domain.RecurrenceTransaction{
		{Type: "transfer", Amount: 10, Category: "rent", Recurrence: domain.RecurMonthly, StartDate: start},
		{Type: domain.TxExpense, Amount: 0, Category: "rent", Recurrence: domain.RecurMonthly, StartDate: start},
		{Type: domain.TxExpense, Amount: 10, Recurrence: domain.RecurMonthly, StartDate: start},
		{Type: domain.TxExpense, Amount: 10, Category: "rent", Recurrence: "Fortnightly", StartDate: start},
		{Type: domain.TxExpense, Amount: 10, Category: "rent", Recurrence: domain.RecurMonthly},
		{Type: domain.TxExpense, Amount: 10, Category: "rent", Recurrence: domain.RecurMonthly, StartDate: start, EndDate: &end},
	}
	for i, req := range cases {
		_, err := svc.CreateRecurrence(context.Background(), "user-1", &req)
		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCreateRecurrence_Success(t *testing.T) {
	store := newMockStore()
	svc := service.NewRecurrenceService(store, fixedNow, zap.NewNop())

	created, err := svc.CreateRecurrence(context.Background(), "user-1", &domain.RecurrenceTransaction{
		Type: domain.TxExpense, Amount: 1500, Category: "rent",
		Recurrence: domain.RecurMonthly, StartDate: fixedNow().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.UserID != "user-1" {
		t.Errorf("expected owner user-1, got %s", created.UserID)
	}
	if !created.CreatedAt.Equal(fixedNow()) {
		t.Errorf("expected created_at from clock, got %v", created.CreatedAt)
	}
}

func TestListUpcoming_TwoDayWindow(t *testing.T) {
	store := &upcomingRecordingStore{}
	svc := service.NewRecurrenceService(store, fixedNow, zap.NewNop())

	if _, err := svc.ListUpcoming(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !store.from.Equal(fixedNow()) {
		t.Errorf("expected window start at now, got %v", store.from)
	}
	if got := store.to.Sub(store.from); got != 48*time.Hour {
		t.Errorf("expected a 48h window, got %v", got)
	}
}
