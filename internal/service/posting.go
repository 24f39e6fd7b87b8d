package service

import (
	"context"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/infra/observability"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var postingTracer = otel.Tracer("service/posting")

// PostingService is the transaction-posting orchestrator. Each posting
// sequences currency conversion, the balance affordability gate, the
// persist, and the two advisory subsystems (budget check, goal
// accrual/affordability).
//
// There is no transactional boundary across entities in the store: a
// transaction is either absent or persisted, and the advisory steps
// run best-effort after the persist. Two concurrent postings for the
// same user can both read the same pre-transaction balance and both
// commit; that read-then-write race is accepted and documented rather
// than serialized away.
type PostingService struct {
	transactions port.TransactionStore
	converter    *Converter
	ledger       *Ledger
	budgets      *BudgetEvaluator
	goals        *GoalEngine
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewPostingService creates the posting orchestrator.
func NewPostingService(
	transactions port.TransactionStore,
	converter *Converter,
	ledger *Ledger,
	budgets *BudgetEvaluator,
	goals *GoalEngine,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PostingService {
	return &PostingService{
		transactions: transactions,
		converter:    converter,
		ledger:       ledger,
		budgets:      budgets,
		goals:        goals,
		metrics:      metrics,
		logger:       logger,
	}
}

// CreateTransaction runs the full posting workflow and returns the
// persisted transaction together with the balance snapshot taken
// before it was persisted.
func (s *PostingService) CreateTransaction(ctx context.Context, userID string, req *domain.CreateTransactionRequest) (*domain.PostingResult, error) {
	ctx, span := postingTracer.Start(ctx, "PostingService.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("tx.type", req.Type),
		attribute.Float64("tx.amount", req.Amount),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("posting", time.Since(start)) }()

	// Step 1: caller identity.
	if userID == "" {
		return nil, &domain.ErrUnauthenticated{}
	}
	if err := validatePostingRequest(req); err != nil {
		return nil, err
	}

	// Step 2: normalize to base currency. A conversion failure aborts
	// everything; nothing is persisted.
	converted, err := s.converter.Convert(ctx, req.Amount, req.Currency)
	if err != nil {
		s.metrics.IncrPosting("conversion_error")
		return nil, err
	}

	// Step 3: pre-transaction balance over committed transactions only.
	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		s.metrics.IncrPosting("rejected")
		return nil, err
	}

	// Step 4: the affordability gate — the one hard-blocking invariant.
	if req.Type == domain.TxExpense && converted > balance.Balance {
		s.metrics.IncrPosting("rejected")
		s.logger.Info("posting rejected: insufficient funds",
			zap.String("user_id", userID),
			zap.Float64("amount", converted),
			zap.Float64("balance", balance.Balance),
		)
		return nil, &domain.ErrInsufficientFunds{
			Balance:  balance.Balance,
			Currency: s.converter.BaseCurrency(),
		}
	}

	// Step 5: persist.
	tx := &domain.Transaction{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     req.Type,
		Amount:   converted,
		Category: req.Category,
		Tags:     req.Tags,
		Date:     time.Now(),
	}
	if req.Currency != "" && req.Currency != s.converter.BaseCurrency() {
		original := req.Amount
		tx.OriginalAmount = &original
		tx.OriginalCurrency = req.Currency
	}

	persisted, err := s.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		s.metrics.IncrPosting("rejected")
		return nil, err
	}

	// Steps 6-8: advisory subsystems. From here on the transaction is
	// committed and nothing may fail the posting.
	s.checkBudgetAdvisory(ctx, userID, req.Category, converted)

	switch req.Type {
	case domain.TxIncome:
		s.accrueIncomeBestEffort(ctx, persisted, req.Category, converted)
	case domain.TxExpense:
		s.checkGoalAffordabilityAdvisory(ctx, userID, converted)
	}

	s.metrics.IncrPosting("accepted")
	s.logger.Info("transaction posted",
		zap.String("transaction_id", persisted.ID),
		zap.String("user_id", userID),
		zap.String("type", persisted.Type),
		zap.Float64("amount", persisted.Amount),
		zap.String("category", persisted.Category),
	)

	// Step 9: the returned balance is the pre-transaction snapshot.
	return &domain.PostingResult{
		Transaction: persisted,
		Balance:     balance.Balance,
	}, nil
}

// checkBudgetAdvisory runs the budget evaluator, logs the outcome and
// discards any error.
func (s *PostingService) checkBudgetAdvisory(ctx context.Context, userID, category string, amount float64) {
	over, err := s.budgets.CheckBudget(ctx, userID, category, amount)
	if err != nil {
		s.metrics.IncrAdvisoryFailure("budget")
		s.logger.Warn("budget check failed (suppressed)",
			zap.String("user_id", userID),
			zap.String("category", category),
			zap.Error(err),
		)
		return
	}
	if over {
		s.metrics.IncrBudgetOverage()
		s.logger.Warn("budget exceeded",
			zap.String("user_id", userID),
			zap.String("category", category),
			zap.Float64("amount", amount),
		)
	}
}

// accrueIncomeBestEffort credits a matching goal. The transaction is
// already persisted, so a failure here leaves the ledger and the goal
// out of sync; it is reported as a structured inconsistency event for
// external reconciliation, never propagated.
func (s *PostingService) accrueIncomeBestEffort(ctx context.Context, tx *domain.Transaction, category string, amount float64) {
	goal, err := s.goals.AccrueIncome(ctx, tx.UserID, category, amount)
	if err != nil {
		s.metrics.IncrAdvisoryFailure("goal")
		s.metrics.IncrInconsistencyEvent()
		s.logger.Error("goal accrual failed after persist",
			zap.String("transaction_id", tx.ID),
			zap.String("user_id", tx.UserID),
			zap.String("category", category),
			zap.Float64("amount", amount),
			zap.Error(err),
		)
		return
	}
	if goal != nil {
		s.metrics.IncrGoalAccrual()
		s.logger.Info("goal accrued",
			zap.String("goal_id", goal.ID),
			zap.String("user_id", tx.UserID),
			zap.Float64("saved_amount", goal.SavedAmount),
			zap.Float64("target_amount", goal.TargetAmount),
		)
	}
}

// checkGoalAffordabilityAdvisory runs the secondary, totalBalance-based
// affordability check. It happens after commit, so it can only warn.
func (s *PostingService) checkGoalAffordabilityAdvisory(ctx context.Context, userID string, amount float64) {
	warn, err := s.goals.CheckExpenseAffordability(ctx, userID, amount)
	if err != nil {
		s.metrics.IncrAdvisoryFailure("goal")
		s.logger.Warn("goal affordability check failed (suppressed)",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}
	if warn {
		s.logger.Warn("expense exceeds balance remaining after goal savings",
			zap.String("user_id", userID),
			zap.Float64("amount", amount),
		)
	}
}

// Balance exposes the ledger calculation for summary endpoints.
func (s *PostingService) Balance(ctx context.Context, userID string) (*domain.LedgerBalance, error) {
	return s.ledger.Balance(ctx, userID)
}

func validatePostingRequest(req *domain.CreateTransactionRequest) error {
	if req.Type != domain.TxIncome && req.Type != domain.TxExpense {
		return &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if req.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.Category == "" {
		return &domain.ErrValidation{Field: "category", Message: "required"}
	}
	return nil
}
