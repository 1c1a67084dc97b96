package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

var returnMinimal = http.Header{"Prefer": []string{"return=minimal"}}

func restPath(table string, q url.Values) string {
	p := "/rest/v1/" + url.PathEscape(table)
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p
}

type profileRepo struct {
	c     *client
	table string
}

type profileRow struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r *profileRepo) Insert(ctx context.Context, p repository.Profile) error {
	return r.c.do(ctx, "insert profile", http.MethodPost, restPath(r.table, nil), returnMinimal,
		profileRow{ID: p.ID, Email: p.Email, Name: p.Name}, nil)
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	q := url.Values{"id": []string{"eq." + id}}
	return r.c.do(ctx, "delete profile", http.MethodDelete, restPath(r.table, q), returnMinimal, nil, nil)
}

type membershipRepo struct {
	c     *client
	table string
}

type membershipRow struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func (r *membershipRepo) Insert(ctx context.Context, m repository.Membership) error {
	return r.c.do(ctx, "insert membership", http.MethodPost, restPath(r.table, nil), returnMinimal,
		membershipRow{TenantID: m.TenantID, UserID: m.UserID, Role: m.Role, IsActive: m.IsActive}, nil)
}

type tenantRepo struct {
	c     *client
	table string
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	q := url.Values{
		"id":     []string{"eq." + id},
		"select": []string{"id,slug,name"},
	}
	var rows []repository.Tenant
	if err := r.c.do(ctx, "get tenant", http.MethodGet, restPath(r.table, q), nil, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase: get tenant %q: %w", id, repository.ErrNotFound)
	}
	return &rows[0], nil
}
