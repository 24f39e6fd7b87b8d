package service

import (
	"context"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var txTracer = otel.Tracer("service/transactions")

// TransactionService covers the read/update/delete side of the ledger.
// Creation goes through PostingService.
type TransactionService struct {
	store     port.TransactionStore
	converter *Converter
	logger    *zap.Logger
}

// NewTransactionService creates the transaction CRUD service.
func NewTransactionService(store port.TransactionStore, converter *Converter, logger *zap.Logger) *TransactionService {
	return &TransactionService{store: store, converter: converter, logger: logger}
}

// ListTransactions returns the user's transactions, newest first,
// optionally filtered by type, category and tags.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.ListTransactions")
	defer span.End()

	return s.store.ListTransactions(ctx, userID, filter)
}

// UpdateTransaction mutates an owned transaction. A currency on the
// request re-triggers conversion of the new amount, but an update
// never re-runs the budget check or goal accrual; callers relying on
// those aggregates must account for the asymmetry.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id string, req *domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.UpdateTransaction")
	defer span.End()

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, &domain.ErrForbidden{Action: "update transaction owned by another user"}
	}

	if req.Type != "" {
		if req.Type != domain.TxIncome && req.Type != domain.TxExpense {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
		}
		tx.Type = req.Type
	}
	if req.Category != "" {
		tx.Category = req.Category
	}
	if req.Tags != nil {
		tx.Tags = req.Tags
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
		}
		converted, err := s.converter.Convert(ctx, *req.Amount, req.Currency)
		if err != nil {
			return nil, err
		}
		tx.Amount = converted
		if req.Currency != "" && req.Currency != s.converter.BaseCurrency() {
			original := *req.Amount
			tx.OriginalAmount = &original
			tx.OriginalCurrency = req.Currency
		} else {
			tx.OriginalAmount = nil
			tx.OriginalCurrency = ""
		}
	}

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction updated",
		zap.String("transaction_id", id),
		zap.String("user_id", userID),
	)
	return updated, nil
}

// DeleteTransaction removes an owned transaction. There is no cascade:
// deleting an income transaction does not reverse any goal accrual it
// caused.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	ctx, span := txTracer.Start(ctx, "TransactionService.DeleteTransaction")
	defer span.End()

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if tx.UserID != userID {
		return &domain.ErrForbidden{Action: "delete transaction owned by another user"}
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.logger.Info("transaction deleted",
		zap.String("transaction_id", id),
		zap.String("user_id", userID),
	)
	return nil
}
