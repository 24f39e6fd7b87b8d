package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/infra/cache"
	"github.com/fintrackhq/fintrack-api/internal/infra/observability"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"go.uber.org/zap"
)

func newTransactionService(store *mockStore, rates *mockRates) *service.TransactionService {
	converter := service.NewConverter(rates, cache.New[float64](time.Minute), "LKR", observability.NewMetrics(), zap.NewNop())
	return service.NewTransactionService(store, converter, zap.NewNop())
}

func TestUpdateTransaction_OwnershipEnforced(t *testing.T) {
	store := newMockStore()
	store.transactions = append(store.transactions, domain.Transaction{
		ID: "t1", UserID: "user-1", Type: domain.TxExpense, Amount: 100, Category: "food", Date: time.Now(),
	})
	svc := newTransactionService(store, &mockRates{})

	_, err := svc.UpdateTransaction(context.Background(), "user-2", "t1", &domain.UpdateTransactionRequest{
		Category: "groceries",
	})
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateTransaction_AmountReconverted(t *testing.T) {
	store := newMockStore()
	store.transactions = append(store.transactions, domain.Transaction{
		ID: "t1", UserID: "user-1", Type: domain.TxExpense, Amount: 100, Category: "food", Date: time.Now(),
	})
	svc := newTransactionService(store, &mockRates{rates: map[string]float64{"USD": 300}})

	amount := 2.0
	updated, err := svc.UpdateTransaction(context.Background(), "user-1", "t1", &domain.UpdateTransactionRequest{
		Amount: &amount, Currency: "USD",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Amount != 600 {
		t.Errorf("expected converted amount 600, got %f", updated.Amount)
	}
	if updated.OriginalAmount == nil || *updated.OriginalAmount != 2 {
		t.Errorf("expected original amount 2, got %v", updated.OriginalAmount)
	}
	if updated.OriginalCurrency != "USD" {
		t.Errorf("expected original currency USD, got %s", updated.OriginalCurrency)
	}
}

func TestUpdateTransaction_BaseCurrencyClearsOriginal(t *testing.T) {
	store := newMockStore()
	original := 2.0
	store.transactions = append(store.transactions, domain.Transaction{
		ID: "t1", UserID: "user-1", Type: domain.TxExpense, Amount: 600, Category: "food",
		OriginalAmount: &original, OriginalCurrency: "USD", Date: time.Now(),
	})
	svc := newTransactionService(store, &mockRates{})

	amount := 700.0
	updated, err := svc.UpdateTransaction(context.Background(), "user-1", "t1", &domain.UpdateTransactionRequest{
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Amount != 700 {
		t.Errorf("expected amount 700, got %f", updated.Amount)
	}
	if updated.OriginalAmount != nil || updated.OriginalCurrency != "" {
		t.Error("base currency update must clear the original amount/currency")
	}
}

func TestDeleteTransaction_OwnershipEnforced(t *testing.T) {
	store := newMockStore()
	store.transactions = append(store.transactions, domain.Transaction{
		ID: "t1", UserID: "user-1", Type: domain.TxExpense, Amount: 100, Category: "food", Date: time.Now(),
	})
	svc := newTransactionService(store, &mockRates{})

	err := svc.DeleteTransaction(context.Background(), "user-2", "t1")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(store.transactions) != 1 {
		t.Error("forbidden delete must not remove the transaction")
	}

	if err := svc.DeleteTransaction(context.Background(), "user-1", "t1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(store.transactions) != 0 {
		t.Error("expected transaction removed")
	}
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	svc := newTransactionService(newMockStore(), &mockRates{})

	err := svc.DeleteTransaction(context.Background(), "user-1", "missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
