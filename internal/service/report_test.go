package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"go.uber.org/zap"
)

func newReportService(store *mockStore) *service.ReportService {
	return service.NewReportService(store, store, store, service.NewLedger(store), zap.NewNop())
}

func TestUserSummary(t *testing.T) {
	store := newMockStore()
	store.transactions = append(store.transactions,
		domain.Transaction{ID: "t1", UserID: "user-1", Type: domain.TxIncome, Amount: 5000, Category: "salary", Date: time.Now()},
		domain.Transaction{ID: "t2", UserID: "user-1", Type: domain.TxExpense, Amount: 1200, Category: "rent", Date: time.Now()},
		domain.Transaction{ID: "t3", UserID: "user-2", Type: domain.TxIncome, Amount: 999, Category: "salary", Date: time.Now()},
	)
	store.goals = append(store.goals, domain.Goal{
		ID: "g1", UserID: "user-1", Name: "Vacation", Category: "travel",
		TargetAmount: 2000, SavedAmount: 500,
	})

	svc := newReportService(store)

	summary, err := svc.UserSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.TotalIncome != 5000 {
		t.Errorf("expected total income 5000, got %f", summary.TotalIncome)
	}
	if summary.TotalExpense != 1200 {
		t.Errorf("expected total expense 1200, got %f", summary.TotalExpense)
	}
	if summary.Balance != 3800 {
		t.Errorf("expected balance 3800, got %f", summary.Balance)
	}
	if len(summary.Goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(summary.Goals))
	}
	if summary.Goals[0].RemainingAmount != 1500 {
		t.Errorf("expected remaining 1500, got %f", summary.Goals[0].RemainingAmount)
	}
}

func TestUserSummary_OvershootGoalRemainingClampsToZero(t *testing.T) {
	store := newMockStore()
	store.goals = append(store.goals, domain.Goal{
		ID: "g1", UserID: "user-1", Category: "travel",
		TargetAmount: 1000, SavedAmount: 1400,
	})

	svc := newReportService(store)

	summary, err := svc.UserSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Goals[0].RemainingAmount != 0 {
		t.Errorf("expected remaining clamped to 0, got %f", summary.Goals[0].RemainingAmount)
	}
}

func TestAdminSummary(t *testing.T) {
	store := newMockStore()
	store.users["user-1"] = &domain.User{ID: "user-1", Name: "Amal"}
	store.users["user-2"] = &domain.User{ID: "user-2", Name: "Nimal"}
	store.transactions = append(store.transactions,
		domain.Transaction{ID: "t1", UserID: "user-1", Type: domain.TxIncome, Amount: 100, Category: "salary", Date: time.Now()},
		domain.Transaction{ID: "t2", UserID: "user-2", Type: domain.TxIncome, Amount: 200, Category: "salary", Date: time.Now()},
	)

	svc := newReportService(store)

	rows, err := svc.AdminSummary(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byID := map[string]domain.AdminUserSummary{}
	for _, row := range rows {
		byID[row.UserID] = row
	}
	if byID["user-1"].TotalIncome != 100 {
		t.Errorf("expected user-1 income 100, got %f", byID["user-1"].TotalIncome)
	}
	if byID["user-2"].TotalIncome != 200 {
		t.Errorf("expected user-2 income 200, got %f", byID["user-2"].TotalIncome)
	}
}

func TestFinancialReport_CategoryBreakdown(t *testing.T) {
	store := newMockStore()
	store.transactions = append(store.transactions,
		domain.Transaction{ID: "t1", UserID: "user-1", Type: domain.TxIncome, Amount: 5000, Category: "salary", Date: time.Now()},
		domain.Transaction{ID: "t2", UserID: "user-1", Type: domain.TxExpense, Amount: 300, Category: "food", Date: time.Now()},
		domain.Transaction{ID: "t3", UserID: "user-1", Type: domain.TxExpense, Amount: 200, Category: "food", Date: time.Now()},
		domain.Transaction{ID: "t4", UserID: "user-1", Type: domain.TxExpense, Amount: 1000, Category: "rent", Date: time.Now()},
	)

	svc := newReportService(store)

	report, err := svc.FinancialReport(context.Background(), "user-1", domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.TotalIncome != 5000 {
		t.Errorf("expected income 5000, got %f", report.TotalIncome)
	}
	if report.TotalExpense != 1500 {
		t.Errorf("expected expense 1500, got %f", report.TotalExpense)
	}
	if report.Balance != 3500 {
		t.Errorf("expected balance 3500, got %f", report.Balance)
	}
	if report.CategoryBreakdown["food"] != 500 {
		t.Errorf("expected food breakdown 500, got %f", report.CategoryBreakdown["food"])
	}
	if report.CategoryBreakdown["rent"] != 1000 {
		t.Errorf("expected rent breakdown 1000, got %f", report.CategoryBreakdown["rent"])
	}
	if _, ok := report.CategoryBreakdown["salary"]; ok {
		t.Error("income categories must not appear in the expense breakdown")
	}
	if len(report.Transactions) != 4 {
		t.Errorf("expected 4 transactions, got %d", len(report.Transactions))
	}
}
