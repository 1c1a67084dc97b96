package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	httperrors "github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
	svc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/admin"
)

type stubService struct {
	calls int
	last  svc.ProvisionRequest
	out   *svc.ProvisionedUser
	err   error
}

func (s *stubService) Provision(_ context.Context, in svc.ProvisionRequest) (*svc.ProvisionedUser, error) {
	s.calls++
	s.last = in
	return s.out, s.err
}

const validBody = `{"email":"Admin@Acme.io","password":"s3cret-pass","name":"Ada","tenantId":"t-body"}`

func newRouter(c *ProvisionController) http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/v2/admin/provision", c.Provision)
	r.Post("/v2/admin/tenants/{tenantId}/users", c.CreateTenantUser)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestProvision_NonPostRejectedWithoutCalls(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			s := &stubService{}
			rec := do(newRouter(NewProvisionController(s, 0)), method, "/v2/admin/provision", validBody)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "POST", rec.Header().Get("Allow"))
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "INVALID_METHOD", body["code"])
			assert.Equal(t, "method", body["step"])
			assert.Zero(t, s.calls)
		})
	}
}

func TestProvision_Success(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &stubService{out: &svc.ProvisionedUser{
		Identity: repository.Identity{ID: "u-1", Email: "admin@acme.io", EmailConfirmed: true, CreatedAt: created},
		TenantID: "t-body",
		Role:     repository.RoleAdmin,
	}}
	rec := do(newRouter(NewProvisionController(s, 0)), http.MethodPost, "/v2/admin/provision", validBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "t-body", body["tenant_id"])
	assert.Equal(t, "admin", body["role"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "u-1", user["id"])
	assert.Equal(t, "admin@acme.io", user["email"])

	assert.Equal(t, 1, s.calls)
	assert.Equal(t, svc.ProvisionRequest{
		Email:       "Admin@Acme.io",
		Password:    "s3cret-pass",
		DisplayName: "Ada",
		TenantID:    "t-body",
	}, s.last)
}

func TestCreateTenantUser_PathTenantWins(t *testing.T) {
	s := &stubService{out: &svc.ProvisionedUser{Identity: repository.Identity{ID: "u-1"}, TenantID: "t-path", Role: "admin"}}
	rec := do(newRouter(NewProvisionController(s, 0)), http.MethodPost, "/v2/admin/tenants/t-path/users", validBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "t-path", s.last.TenantID)
}

func TestProvision_BadJSON(t *testing.T) {
	s := &stubService{}
	rec := do(newRouter(NewProvisionController(s, 0)), http.MethodPost, "/v2/admin/provision", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode(t, rec)["code"])
	assert.Zero(t, s.calls)
}

func TestProvision_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid request", &svc.ProvisionError{Kind: svc.KindInvalidRequest, Step: svc.StepValidate, Message: "invalid request: email is required"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"tenant not found", &svc.ProvisionError{Kind: svc.KindTenantNotFound, Step: svc.StepTenant, Message: `tenant "x" not found`}, http.StatusNotFound, "TENANT_NOT_FOUND"},
		{"identity rejected", &svc.ProvisionError{Kind: svc.KindIdentityCreationFailed, Step: svc.StepIdentity, Message: "failed to create auth identity: weak password", Err: repository.ErrInvalidInput}, http.StatusUnprocessableEntity, "IDENTITY_CREATION_FAILED"},
		{"identity conflict", &svc.ProvisionError{Kind: svc.KindIdentityCreationFailed, Step: svc.StepIdentity, Message: "failed to create auth identity: already registered", Err: fmt.Errorf("supabase: %w", repository.ErrConflict)}, http.StatusConflict, "IDENTITY_CREATION_FAILED"},
		{"profile", &svc.ProvisionError{Kind: svc.KindProfileCreationFailed, Step: svc.StepProfile, Message: "failed to create profile: boom"}, http.StatusBadGateway, "PROFILE_CREATION_FAILED"},
		{"membership", &svc.ProvisionError{Kind: svc.KindMembershipCreationFailed, Step: svc.StepMembership, Message: "failed to create tenant membership: fk"}, http.StatusBadGateway, "MEMBERSHIP_CREATION_FAILED"},
		{"unexpected", &svc.ProvisionError{Kind: svc.KindUnexpectedFailure, Step: svc.StepProfile, Message: "unexpected failure during profile: timeout"}, http.StatusInternalServerError, "UNEXPECTED_FAILURE"},
		{"untyped error", fmt.Errorf("raw"), http.StatusInternalServerError, "UNEXPECTED_FAILURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubService{err: tt.err}
			rec := do(newRouter(NewProvisionController(s, 0)), http.MethodPost, "/v2/admin/provision", validBody)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["step"])
		})
	}
}

func TestProvision_MessageKeepsBackendDetail(t *testing.T) {
	s := &stubService{err: &svc.ProvisionError{
		Kind:    svc.KindProfileCreationFailed,
		Step:    svc.StepProfile,
		Message: `failed to create profile: duplicate key value violates unique constraint "profiles_pkey"`,
	}}
	rec := do(newRouter(NewProvisionController(s, 0)), http.MethodPost, "/v2/admin/provision", validBody)

	assert.Contains(t, decode(t, rec)["error"], "profiles_pkey")
}

func TestToAppError_LeavesBaseErrorsUntouched(t *testing.T) {
	conflict := toAppError(&svc.ProvisionError{
		Kind: svc.KindIdentityCreationFailed,
		Step: svc.StepIdentity,
		Err:  repository.ErrConflict,
	})
	assert.Equal(t, http.StatusConflict, conflict.HTTPStatus)
	assert.Equal(t, "IDENTITY_CREATION_FAILED", conflict.Code)
	assert.Equal(t, "identity", conflict.Step)

	method := toAppError(svc.NewInvalidMethod(http.MethodGet))
	assert.Equal(t, "POST", method.Header.Get("Allow"))

	assert.Equal(t, "CONFLICT", httperrors.ErrConflict.Code)
	assert.Empty(t, httperrors.ErrConflict.Step)
	assert.Equal(t, "METHOD_NOT_ALLOWED", httperrors.ErrMethodNotAllowed.Code)
	assert.Nil(t, httperrors.ErrMethodNotAllowed.Header)
}
