package domain

// GoalProgress is one goal's state inside a summary response.
type GoalProgress struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	SavedAmount     float64 `json:"saved_amount"`
	TargetAmount    float64 `json:"target_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
}

// UserSummary aggregates one user's ledger totals and goal progress.
type UserSummary struct {
	TotalIncome  float64        `json:"total_income"`
	TotalExpense float64        `json:"total_expense"`
	Balance      float64        `json:"balance"`
	Goals        []GoalProgress `json:"goals"`
}

// AdminUserSummary is one row of the admin-wide summary.
type AdminUserSummary struct {
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	TotalIncome  float64        `json:"total_income"`
	TotalExpense float64        `json:"total_expense"`
	Balance      float64        `json:"balance"`
	Goals        []GoalProgress `json:"goals"`
}

// FinancialReport is the filtered read-only report over a user's ledger.
type FinancialReport struct {
	TotalIncome       float64            `json:"total_income"`
	TotalExpense      float64            `json:"total_expense"`
	Balance           float64            `json:"balance"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	Transactions      []Transaction      `json:"transactions"`
}

// PostingMetrics is the JSON snapshot served by GET /v1/metrics/posting.
type PostingMetrics struct {
	PostingsAccepted    int64 `json:"postings_accepted"`
	PostingsRejected    int64 `json:"postings_rejected"`
	ConversionFailures  int64 `json:"conversion_failures"`
	BudgetOverages      int64 `json:"budget_overages"`
	GoalAccruals        int64 `json:"goal_accruals"`
	AdvisoryFailures    int64 `json:"advisory_failures"`
	InconsistencyEvents int64 `json:"inconsistency_events"`
}
