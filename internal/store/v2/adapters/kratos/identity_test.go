package kratos

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

const identityJSON = `{
	"id": "9f425a8d-7efc-4768-8f23-7647a74fdf13",
	"schema_id": "default",
	"schema_url": "http://kratos/schemas/default",
	"state": "active",
	"traits": {"email": "a@example.com", "name": "Ada"},
	"metadata_public": {"name": "Ada"},
	"verifiable_addresses": [{"value": "a@example.com", "verified": true, "via": "email", "status": "completed"}],
	"created_at": "2024-01-01T00:00:00Z"
}`

func newRepo(t *testing.T, h http.HandlerFunc) *IdentityRepo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewIdentityRepo(NewAPIClient(srv.URL, srv.Client()), "")
}

func TestIdentityRepo_Create(t *testing.T) {
	var body map[string]any
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/identities", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, identityJSON)
	})

	id, err := repo.Create(context.Background(), repository.CreateIdentityInput{
		Email:          "a@example.com",
		Password:       "Secret123!",
		EmailConfirmed: true,
		Metadata:       map[string]any{"name": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "9f425a8d-7efc-4768-8f23-7647a74fdf13", id.ID)
	assert.Equal(t, "a@example.com", id.Email)
	assert.True(t, id.EmailConfirmed)
	assert.Equal(t, "Ada", id.Metadata["name"])

	assert.Equal(t, "default", body["schema_id"])
	assert.Equal(t, map[string]any{"email": "a@example.com", "name": "Ada"}, body["traits"])
	creds := body["credentials"].(map[string]any)["password"].(map[string]any)["config"].(map[string]any)
	assert.Equal(t, "Secret123!", creds["password"])
}

func TestIdentityRepo_CreateConflict(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":{"code":409,"status":"Conflict","reason":"This identity conflicts with another identity that already exists.","message":"The resource could not be created due to a conflict"}}`)
	})

	_, err := repo.Create(context.Background(), repository.CreateIdentityInput{Email: "a@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err))

	var be *repository.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "This identity conflicts with another identity that already exists.", be.Detail)
}

func TestIdentityRepo_Delete(t *testing.T) {
	var gotPath string
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, repo.Delete(context.Background(), "abc"))
	assert.Equal(t, "DELETE /admin/identities/abc", gotPath)
}

func TestIdentityRepo_DeleteMissing(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"status":"Not Found","message":"The requested resource could not be found"}}`)
	})

	err := repo.Delete(context.Background(), "abc")
	assert.True(t, repository.IsNotFound(err))
}

func TestIdentityRepo_UnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	repo := NewIdentityRepo(NewAPIClient(addr, http.DefaultClient), "")
	_, err := repo.Create(context.Background(), repository.CreateIdentityInput{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}
