package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/handler"
	"github.com/fintrackhq/fintrack-api/internal/infra/cache"
	"github.com/fintrackhq/fintrack-api/internal/infra/observability"
	"github.com/fintrackhq/fintrack-api/internal/service"

	"go.uber.org/zap"
)

// fakeStore is a minimal in-memory store for end-to-end router tests.
type fakeStore struct {
	mu           sync.Mutex
	transactions []domain.Transaction
	budgets      []domain.Budget
	goals        []domain.Goal
	recurrences  []domain.RecurrenceTransaction
	users        []domain.User
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, *tx)
	return tx, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.transactions {
		if f.transactions[i].ID == id {
			tx := f.transactions[i]
			return &tx, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
}

func (f *fakeStore) ListTransactions(_ context.Context, userID string, _ domain.TransactionFilter) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return tx, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id string) error { return nil }

func (f *fakeStore) SumByType(_ context.Context, userID, txType string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, tx := range f.transactions {
		if tx.UserID == userID && tx.Type == txType {
			sum += tx.Amount
		}
	}
	return sum, nil
}

func (f *fakeStore) SumCategoryInRange(_ context.Context, userID, category string, from, to time.Time) (float64, error) {
	return 0, nil
}

func (f *fakeStore) CreateBudget(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets = append(f.budgets, *b)
	return b, nil
}

func (f *fakeStore) GetBudget(_ context.Context, id string) (*domain.Budget, error) {
	return nil, &domain.ErrNotFound{Resource: "budget", ID: id}
}

func (f *fakeStore) GetBudgetByCategory(_ context.Context, userID, category string) (*domain.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.budgets {
		if f.budgets[i].UserID == userID && f.budgets[i].Category == category {
			b := f.budgets[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Budget
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateBudget(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
	return b, nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, id string) error { return nil }

func (f *fakeStore) CreateGoal(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals = append(f.goals, *g)
	return g, nil
}

func (f *fakeStore) GetGoal(_ context.Context, id string) (*domain.Goal, error) {
	return nil, &domain.ErrNotFound{Resource: "goal", ID: id}
}

func (f *fakeStore) GetGoalByCategory(_ context.Context, userID, category string) (*domain.Goal, error) {
	return nil, nil
}

func (f *fakeStore) ListGoals(_ context.Context, userID string) ([]domain.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Goal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, g *domain.Goal) (*domain.Goal, error) {
	return g, nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, id string) error { return nil }

func (f *fakeStore) IncrementSaved(_ context.Context, goalID string, delta float64) (*domain.Goal, error) {
	return nil, &domain.ErrNotFound{Resource: "goal", ID: goalID}
}

func (f *fakeStore) CreateRecurrence(_ context.Context, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recurrences = append(f.recurrences, *r)
	return r, nil
}

func (f *fakeStore) GetRecurrence(_ context.Context, id string) (*domain.RecurrenceTransaction, error) {
	return nil, &domain.ErrNotFound{Resource: "recurrence", ID: id}
}

func (f *fakeStore) ListRecurrences(_ context.Context, userID string) ([]domain.RecurrenceTransaction, error) {
	return nil, nil
}

func (f *fakeStore) UpdateRecurrence(_ context.Context, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error) {
	return r, nil
}

func (f *fakeStore) DeleteRecurrence(_ context.Context, id string) error { return nil }

func (f *fakeStore) ListUpcoming(_ context.Context, userID string, from, to time.Time) ([]domain.RecurrenceTransaction, error) {
	return nil, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, *u)
	return u, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: id}
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.User(nil), f.users...), nil
}

type staticRates struct{}

func (staticRates) GetRate(_ context.Context, _ string) (float64, error) { return 300, nil }

func newTestRouter(store *fakeStore) http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	converter := service.NewConverter(staticRates{}, cache.New[float64](time.Minute), "LKR", metrics, logger)
	ledger := service.NewLedger(store)

	svcs := &handler.Services{
		Auth:         service.NewAuthService(store, "router-test-secret", time.Hour, logger),
		Posting:      service.NewPostingService(store, converter, ledger, service.NewBudgetEvaluator(store, store, nil), service.NewGoalEngine(store, store), metrics, logger),
		Transactions: service.NewTransactionService(store, converter, logger),
		Budgets:      service.NewBudgetService(store, logger),
		Goals:        service.NewGoalService(store, logger),
		Recurrences:  service.NewRecurrenceService(store, nil, logger),
		Reports:      service.NewReportService(store, store, store, ledger, logger),
	}
	return handler.NewRouter(svcs, store, metrics, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Name: "Amal", Email: "amal@example.com", Password: "correct-horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp domain.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	rec := doJSON(t, router, http.MethodGet, "/v1/transactions", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/transactions", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestPostingFlow(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	token := registerUser(t, router)

	// Income of 1000 USD at rate 300 lands as 300000 LKR.
	rec := doJSON(t, router, http.MethodPost, "/v1/transactions", token, domain.CreateTransactionRequest{
		Type: domain.TxIncome, Amount: 1000, Category: "salary", Currency: "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("income: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var result domain.PostingResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode posting result: %v", err)
	}
	if result.Transaction.Amount != 300000 {
		t.Errorf("expected converted amount 300000, got %f", result.Transaction.Amount)
	}
	if result.Balance != 0 {
		t.Errorf("expected pre-transaction balance 0, got %f", result.Balance)
	}

	// An expense over the balance comes back as a 400 with the balance
	// embedded in the message.
	rec = doJSON(t, router, http.MethodPost, "/v1/transactions", token, domain.CreateTransactionRequest{
		Type: domain.TxExpense, Amount: 400000, Category: "rent",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overdraft: expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Your balance is 300000 LKR")) {
		t.Errorf("expected balance in error message, got %s", rec.Body.String())
	}

	// An affordable expense is accepted.
	rec = doJSON(t, router, http.MethodPost, "/v1/transactions", token, domain.CreateTransactionRequest{
		Type: domain.TxExpense, Amount: 100000, Category: "rent",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestBudgetConflict(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	token := registerUser(t, router)

	budget := domain.Budget{Category: "food", Limit: 500, Type: domain.BudgetDaily}

	rec := doJSON(t, router, http.MethodPost, "/v1/budgets", token, budget)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/budgets", token, budget)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate budget: expected 409, got %d", rec.Code)
	}
}

func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	token := registerUser(t, router)

	for _, path := range []string{"/v1/users", "/v1/admin/summary"} {
		rec := doJSON(t, router, http.MethodGet, path, token, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403 for non-admin, got %d", path, rec.Code)
		}
	}
}

func TestPostingMetricsSnapshot(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	token := registerUser(t, router)

	doJSON(t, router, http.MethodPost, "/v1/transactions", token, domain.CreateTransactionRequest{
		Type: domain.TxIncome, Amount: 100, Category: "salary",
	})

	rec := doJSON(t, router, http.MethodGet, "/v1/metrics/posting", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap domain.PostingMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.PostingsAccepted != 1 {
		t.Errorf("expected 1 accepted posting, got %d", snap.PostingsAccepted)
	}
}
