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
// Users — account identities via PostgREST
// ============================================================

type userRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"password_hash"`
	Role         string  `json:"role"`
	TotalBalance float64 `json:"total_balance"`
	CreatedAt    string  `json:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		TotalBalance: r.TotalBalance,
		CreatedAt:    parseTime(r.CreatedAt),
	}
}

func (c *Client) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	body, err := c.doPost(ctx, "users", map[string]any{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"total_balance": u.TotalBalance,
		"created_at":    u.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no row for created user")
	}
	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()

	path := fmt.Sprintf("users?id=eq.%s&limit=1", id)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	u := rows[0].toDomain()
	return &u, nil
}

// GetUserByEmail returns nil, nil when no user has the email, so the
// registration path can use it as an existence check.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	path := fmt.Sprintf("users?email=eq.%s&limit=1", url.QueryEscape(email))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u := rows[0].toDomain()
	return &u, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	body, err := c.doGet(ctx, "users?order=created_at.asc")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.User{}, nil
	}

	var rows []userRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}
