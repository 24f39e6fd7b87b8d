package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
)

// ============================================================
// Budgets — per-category caps via PostgREST
// ============================================================

type budgetRow struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Category  string  `json:"category"`
	Limit     float64 `json:"limit_amount"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

func (r budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:        r.ID,
		UserID:    r.UserID,
		Category:  r.Category,
		Limit:     r.Limit,
		Type:      r.Type,
		StartDate: parseTime(r.StartDate),
		EndDate:   parseTime(r.EndDate),
	}
}

func budgetData(b *domain.Budget) map[string]any {
	return map[string]any{
		"user_id":      b.UserID,
		"category":     b.Category,
		"limit_amount": b.Limit,
		"type":         b.Type,
		"start_date":   b.StartDate.Format(time.RFC3339),
		"end_date":     b.EndDate.Format(time.RFC3339),
	}
}

func (c *Client) CreateBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()

	data := budgetData(b)
	data["id"] = b.ID

	body, err := c.doPost(ctx, "budgets", data)
	if err != nil {
		return nil, err
	}

	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no row for created budget")
	}
	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) GetBudget(ctx context.Context, id string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBudget")
	defer span.End()

	path := fmt.Sprintf("budgets?id=eq.%s&limit=1", id)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: id}
	}

	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: id}
	}
	b := rows[0].toDomain()
	return &b, nil
}

// GetBudgetByCategory returns nil, nil when no budget exists for the
// pair — callers treat absence as a no-op, not an error.
func (c *Client) GetBudgetByCategory(ctx context.Context, userID, category string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBudgetByCategory")
	defer span.End()

	path := fmt.Sprintf("budgets?user_id=eq.%s&category=eq.%s&limit=1", userID, url.QueryEscape(category))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	b := rows[0].toDomain()
	return &b, nil
}

func (c *Client) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	path := fmt.Sprintf("budgets?user_id=eq.%s&order=category.asc", userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Budget{}, nil
	}

	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	budgets := make([]domain.Budget, 0, len(rows))
	for _, r := range rows {
		budgets = append(budgets, r.toDomain())
	}
	return budgets, nil
}

func (c *Client) UpdateBudget(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBudget")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("budgets?id=eq.%s", b.ID), budgetData(b))
	if err != nil {
		return nil, err
	}

	var rows []budgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: b.ID}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBudget")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("budgets?id=eq.%s", id))
}
