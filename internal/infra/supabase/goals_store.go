package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fintrackhq/fintrack-api/internal/domain"
)

// ============================================================
// Goals — savings targets via PostgREST
// ============================================================

type goalRow struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	TargetAmount float64 `json:"target_amount"`
	SavedAmount  float64 `json:"saved_amount"`
}

func (r goalRow) toDomain() domain.Goal {
	return domain.Goal(r)
}

func (c *Client) CreateGoal(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateGoal")
	defer span.End()

	body, err := c.doPost(ctx, "goals", map[string]any{
		"id":            g.ID,
		"user_id":       g.UserID,
		"name":          g.Name,
		"category":      g.Category,
		"target_amount": g.TargetAmount,
		"saved_amount":  g.SavedAmount,
	})
	if err != nil {
		return nil, err
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode goal: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no row for created goal")
	}
	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) GetGoal(ctx context.Context, id string) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetGoal")
	defer span.End()

	path := fmt.Sprintf("goals?id=eq.%s&limit=1", id)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "goal", ID: id}
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode goal: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "goal", ID: id}
	}
	g := rows[0].toDomain()
	return &g, nil
}

// GetGoalByCategory returns nil, nil when the user has no goal in the
// category — income postings in unmatched categories are a no-op.
func (c *Client) GetGoalByCategory(ctx context.Context, userID, category string) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetGoalByCategory")
	defer span.End()

	path := fmt.Sprintf("goals?user_id=eq.%s&category=eq.%s&limit=1", userID, url.QueryEscape(category))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode goal: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	g := rows[0].toDomain()
	return &g, nil
}

func (c *Client) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListGoals")
	defer span.End()

	path := fmt.Sprintf("goals?user_id=eq.%s&order=name.asc", userID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Goal{}, nil
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode goals: %w", err)
	}
	goals := make([]domain.Goal, 0, len(rows))
	for _, r := range rows {
		goals = append(goals, r.toDomain())
	}
	return goals, nil
}

// UpdateGoal updates name, category and target. SavedAmount moves only
// through IncrementSaved.
func (c *Client) UpdateGoal(ctx context.Context, g *domain.Goal) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateGoal")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("goals?id=eq.%s", g.ID), map[string]any{
		"name":          g.Name,
		"category":      g.Category,
		"target_amount": g.TargetAmount,
	})
	if err != nil {
		return nil, err
	}

	var rows []goalRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode goal: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "goal", ID: g.ID}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteGoal")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("goals?id=eq.%s", id))
}

// IncrementSaved atomically adds delta to a goal's saved_amount via a
// stored function, so concurrent accruals cannot lose an update.
func (c *Client) IncrementSaved(ctx context.Context, goalID string, delta float64) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.IncrementSaved")
	defer span.End()

	body, err := c.doRPC(ctx, "increment_goal_saved", map[string]any{
		"p_goal_id": goalID,
		"p_delta":   delta,
	})
	if err != nil {
		return nil, err
	}

	var row goalRow
	if err := json.Unmarshal(body, &row); err != nil {
		// Some PostgREST versions wrap single-row results in an array.
		var rows []goalRow
		if err2 := json.Unmarshal(body, &rows); err2 != nil || len(rows) == 0 {
			return nil, fmt.Errorf("decode goal: %w", err)
		}
		row = rows[0]
	}
	g := row.toDomain()
	return &g, nil
}
