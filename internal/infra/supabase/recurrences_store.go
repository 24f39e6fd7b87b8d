package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
)

// ============================================================
// Recurrence schedules via PostgREST
// ============================================================

type recurrenceRow struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Type       string   `json:"type"`
	Amount     float64  `json:"amount"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Recurrence string   `json:"recurrence"`
	StartDate  string   `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	CreatedAt  string   `json:"created_at"`
}

func (r recurrenceRow) toDomain() domain.RecurrenceTransaction {
	rec := domain.RecurrenceTransaction{
		ID:         r.ID,
		UserID:     r.UserID,
		Type:       r.Type,
		Amount:     r.Amount,
		Category:   r.Category,
		Tags:       r.Tags,
		Recurrence: r.Recurrence,
		StartDate:  parseTime(r.StartDate),
		CreatedAt:  parseTime(r.CreatedAt),
	}
	if r.EndDate != nil {
		end := parseTime(*r.EndDate)
		rec.EndDate = &end
	}
	return rec
}

func recurrenceData(r *domain.RecurrenceTransaction) map[string]any {
	data := map[string]any{
		"user_id":    r.UserID,
		"type":       r.Type,
		"amount":     r.Amount,
		"category":   r.Category,
		"tags":       r.Tags,
		"recurrence": r.Recurrence,
		"start_date": r.StartDate.Format(time.RFC3339),
	}
	if r.EndDate != nil {
		data["end_date"] = r.EndDate.Format(time.RFC3339)
	}
	return data
}

func (c *Client) CreateRecurrence(ctx context.Context, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRecurrence")
	defer span.End()

	data := recurrenceData(r)
	data["id"] = r.ID
	data["created_at"] = r.CreatedAt.Format(time.RFC3339)

	body, err := c.doPost(ctx, "recurrence_transactions", data)
	if err != nil {
		return nil, err
	}

	var rows []recurrenceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode recurrence: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no row for created recurrence")
	}
	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) GetRecurrence(ctx context.Context, id string) (*domain.RecurrenceTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRecurrence")
	defer span.End()

	path := fmt.Sprintf("recurrence_transactions?id=eq.%s&limit=1", id)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "recurrence_transaction", ID: id}
	}

	var rows []recurrenceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode recurrence: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "recurrence_transaction", ID: id}
	}
	rec := rows[0].toDomain()
	return &rec, nil
}

func (c *Client) ListRecurrences(ctx context.Context, userID string) ([]domain.RecurrenceTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRecurrences")
	defer span.End()

	path := fmt.Sprintf("recurrence_transactions?user_id=eq.%s&order=start_date.asc", userID)
	return c.listRecurrences(ctx, path)
}

// ListUpcoming returns schedules whose start date falls in [from, to].
func (c *Client) ListUpcoming(ctx context.Context, userID string, from, to time.Time) ([]domain.RecurrenceTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUpcoming")
	defer span.End()

	path := fmt.Sprintf("recurrence_transactions?user_id=eq.%s&start_date=gte.%s&start_date=lte.%s&order=start_date.asc",
		userID, from.Format(time.RFC3339), to.Format(time.RFC3339))
	return c.listRecurrences(ctx, path)
}

func (c *Client) listRecurrences(ctx context.Context, path string) ([]domain.RecurrenceTransaction, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.RecurrenceTransaction{}, nil
	}

	var rows []recurrenceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode recurrences: %w", err)
	}
	recs := make([]domain.RecurrenceTransaction, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.toDomain())
	}
	return recs, nil
}

func (c *Client) UpdateRecurrence(ctx context.Context, r *domain.RecurrenceTransaction) (*domain.RecurrenceTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRecurrence")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("recurrence_transactions?id=eq.%s", r.ID), recurrenceData(r))
	if err != nil {
		return nil, err
	}

	var rows []recurrenceRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode recurrence: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "recurrence_transaction", ID: r.ID}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

func (c *Client) DeleteRecurrence(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRecurrence")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("recurrence_transactions?id=eq.%s", id))
}
