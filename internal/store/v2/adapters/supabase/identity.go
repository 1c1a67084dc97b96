package supabase

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

type identityRepo struct {
	c *client
}

type createUserBody struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type gotrueUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Create llama a POST /auth/v1/admin/users.
func (r *identityRepo) Create(ctx context.Context, in repository.CreateIdentityInput) (*repository.Identity, error) {
	var u gotrueUser
	err := r.c.do(ctx, "create identity", http.MethodPost, "/auth/v1/admin/users", nil, createUserBody{
		Email:        in.Email,
		Password:     in.Password,
		EmailConfirm: in.EmailConfirmed,
		UserMetadata: in.Metadata,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &repository.Identity{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		Metadata:       u.UserMetadata,
		CreatedAt:      u.CreatedAt,
	}, nil
}

// Delete llama a DELETE /auth/v1/admin/users/{id}.
func (r *identityRepo) Delete(ctx context.Context, userID string) error {
	return r.c.do(ctx, "delete identity", http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(userID), nil, nil, nil)
}
