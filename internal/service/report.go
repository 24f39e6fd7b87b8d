package service

import (
	"context"
	"sync"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/report")

// adminSummaryConcurrency bounds the per-user fan-out of the admin
// summary so a large user table does not flood the store.
const adminSummaryConcurrency = 8

// ReportService produces read-only aggregations: per-user summaries,
// the admin-wide summary and filtered financial reports.
type ReportService struct {
	transactions port.TransactionStore
	goals        port.GoalStore
	users        port.UserStore
	ledger       *Ledger
	logger       *zap.Logger
}

// NewReportService creates the reporting service.
func NewReportService(transactions port.TransactionStore, goals port.GoalStore, users port.UserStore, ledger *Ledger, logger *zap.Logger) *ReportService {
	return &ReportService{
		transactions: transactions,
		goals:        goals,
		users:        users,
		ledger:       ledger,
		logger:       logger,
	}
}

// UserSummary aggregates the caller's ledger totals and goal progress.
// The balance is the same income-minus-expense figure the posting gate
// uses.
func (s *ReportService) UserSummary(ctx context.Context, userID string) (*domain.UserSummary, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.UserSummary")
	defer span.End()

	var (
		balance *domain.LedgerBalance
		goals   []domain.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.ledger.Balance(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.ListGoals(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.UserSummary{
		TotalIncome:  balance.TotalIncome,
		TotalExpense: balance.TotalExpense,
		Balance:      balance.Balance,
		Goals:        goalProgress(goals),
	}, nil
}

// AdminSummary builds the per-user overview across every account. The
// per-user aggregations run concurrently with a bounded fan-out; rows
// come back in the same order as the user listing.
func (s *ReportService) AdminSummary(ctx context.Context) ([]domain.AdminUserSummary, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.AdminSummary")
	defer span.End()

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.AdminUserSummary, len(users))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(adminSummaryConcurrency)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			summary, err := s.UserSummary(gctx, u.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			rows[i] = domain.AdminUserSummary{
				UserID:       u.ID,
				Name:         u.Name,
				TotalIncome:  summary.TotalIncome,
				TotalExpense: summary.TotalExpense,
				Balance:      summary.Balance,
				Goals:        summary.Goals,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

// FinancialReport returns the user's transactions under the given
// filter, with totals and a per-category expense breakdown computed
// over the filtered set.
func (s *ReportService) FinancialReport(ctx context.Context, userID string, filter domain.TransactionFilter) (*domain.FinancialReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.FinancialReport")
	defer span.End()

	txs, err := s.transactions.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	report := &domain.FinancialReport{
		CategoryBreakdown: make(map[string]float64),
		Transactions:      txs,
	}
	for _, tx := range txs {
		switch tx.Type {
		case domain.TxIncome:
			report.TotalIncome += tx.Amount
		case domain.TxExpense:
			report.TotalExpense += tx.Amount
			report.CategoryBreakdown[tx.Category] += tx.Amount
		}
	}
	report.Balance = report.TotalIncome - report.TotalExpense

	return report, nil
}

// ListUsers exposes the account listing for the admin endpoint.
func (s *ReportService) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.ListUsers")
	defer span.End()

	return s.users.ListUsers(ctx)
}

func goalProgress(goals []domain.Goal) []domain.GoalProgress {
	progress := make([]domain.GoalProgress, 0, len(goals))
	for _, g := range goals {
		remaining := g.TargetAmount - g.SavedAmount
		if remaining < 0 {
			remaining = 0
		}
		progress = append(progress, domain.GoalProgress{
			Name:            g.Name,
			Category:        g.Category,
			SavedAmount:     g.SavedAmount,
			TargetAmount:    g.TargetAmount,
			RemainingAmount: remaining,
		})
	}
	return progress
}
