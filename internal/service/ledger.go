package service

import (
	"context"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var ledgerTracer = otel.Tracer("service/ledger")

// Ledger computes balances from persisted transactions. It is a pure
// read: balance = sum(income) − sum(expense) in base currency, over
// everything already committed.
type Ledger struct {
	store port.TransactionStore
}

// NewLedger creates a balance calculator.
func NewLedger(store port.TransactionStore) *Ledger {
	return &Ledger{store: store}
}

// Balance sums the user's income and expense totals concurrently and
// returns the derived balance. Nothing is memoized; every call sees
// the store's current state.
func (l *Ledger) Balance(ctx context.Context, userID string) (*domain.LedgerBalance, error) {
	ctx, span := ledgerTracer.Start(ctx, "Ledger.Balance")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var income, expense float64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := l.store.SumByType(gCtx, userID, domain.TxIncome)
		if err != nil {
			return err
		}
		income = v
		return nil
	})
	g.Go(func() error {
		v, err := l.store.SumByType(gCtx, userID, domain.TxExpense)
		if err != nil {
			return err
		}
		expense = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.LedgerBalance{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income - expense,
	}, nil
}
