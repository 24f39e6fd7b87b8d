package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
)

// ============================================================
// Transactions — ledger entries via PostgREST
// ============================================================

// transactionRow maps the transactions table columns.
type transactionRow struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Type             string   `json:"type"`
	Amount           float64  `json:"amount"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	OriginalAmount   *float64 `json:"original_amount"`
	OriginalCurrency string   `json:"original_currency"`
	Date             string   `json:"date"`
}

func (r transactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:               r.ID,
		UserID:           r.UserID,
		Type:             r.Type,
		Amount:           r.Amount,
		Category:         r.Category,
		Tags:             r.Tags,
		OriginalAmount:   r.OriginalAmount,
		OriginalCurrency: r.OriginalCurrency,
		Date:             parseTime(r.Date),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, _ = time.Parse("2006-01-02", s)
	}
	return t
}

func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	data := map[string]any{
		"id":       tx.ID,
		"user_id":  tx.UserID,
		"type":     tx.Type,
		"amount":   tx.Amount,
		"category": tx.Category,
		"tags":     tx.Tags,
		"date":     tx.Date.Format(time.RFC3339),
	}
	if tx.OriginalAmount != nil {
		data["original_amount"] = *tx.OriginalAmount
		data["original_currency"] = tx.OriginalCurrency
	}

	body, err := c.doPost(ctx, "transactions", data)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no row for created transaction")
	}
	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	path := fmt.Sprintf("transactions?id=eq.%s&limit=1", id)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
	}
	tx := rows[0].toDomain()
	return &tx, nil
}

func (c *Client) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	parts := []string{fmt.Sprintf("user_id=eq.%s", userID)}
	if filter.Type != "" {
		parts = append(parts, fmt.Sprintf("type=eq.%s", filter.Type))
	}
	if filter.Category != "" {
		parts = append(parts, fmt.Sprintf("category=eq.%s", url.QueryEscape(filter.Category)))
	}
	if len(filter.Tags) > 0 {
		// PostgREST overlap operator on the tags array column
		parts = append(parts, fmt.Sprintf("tags=ov.{%s}", url.QueryEscape(strings.Join(filter.Tags, ","))))
	}
	if !filter.From.IsZero() {
		parts = append(parts, fmt.Sprintf("date=gte.%s", filter.From.Format(time.RFC3339)))
	}
	if !filter.To.IsZero() {
		parts = append(parts, fmt.Sprintf("date=lte.%s", filter.To.Format(time.RFC3339)))
	}
	parts = append(parts, "order=date.desc")

	body, err := c.doGet(ctx, "transactions?"+strings.Join(parts, "&"))
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toDomain())
	}
	return txs, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	data := map[string]any{
		"type":     tx.Type,
		"amount":   tx.Amount,
		"category": tx.Category,
		"tags":     tx.Tags,
	}
	if tx.OriginalAmount != nil {
		data["original_amount"] = *tx.OriginalAmount
		data["original_currency"] = tx.OriginalCurrency
	}

	body, err := c.doPatch(ctx, fmt.Sprintf("transactions?id=eq.%s", tx.ID), data)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("transactions?id=eq.%s", id))
}

// SumByType sums all amounts of one kind for a user. The sum runs
// client-side over an amount-only projection.
func (c *Client) SumByType(ctx context.Context, userID, txType string) (float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumByType")
	defer span.End()

	path := fmt.Sprintf("transactions?user_id=eq.%s&type=eq.%s&select=amount", userID, txType)
	return c.sumAmounts(ctx, path)
}

// SumCategoryInRange sums same-category amounts dated within [from, to].
func (c *Client) SumCategoryInRange(ctx context.Context, userID, category string, from, to time.Time) (float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumCategoryInRange")
	defer span.End()

	path := fmt.Sprintf("transactions?user_id=eq.%s&category=eq.%s&date=gte.%s&date=lte.%s&select=amount",
		userID, url.QueryEscape(category), from.Format(time.RFC3339), to.Format(time.RFC3339))
	return c.sumAmounts(ctx, path)
}

func (c *Client) sumAmounts(ctx context.Context, path string) (float64, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return 0, err
	}
	if body == nil {
		return 0, nil
	}

	var rows []struct {
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode amounts: %w", err)
	}

	var total float64
	for _, r := range rows {
		total += r.Amount
	}
	return total, nil
}
