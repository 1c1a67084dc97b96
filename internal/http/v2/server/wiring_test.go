package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantprov/internal/config"
	_ "github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/supabase"
)

// fakeSupabase emula GoTrue admin + PostgREST con lo mínimo del flujo.
type fakeSupabase struct {
	mu             sync.Mutex
	calls          []string
	failMembership bool
}

func (f *fakeSupabase) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	f.calls = append(f.calls, call)
}

func (f *fakeSupabase) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSupabase) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 "u-1",
			"email":              in["email"],
			"email_confirmed_at": "2026-01-01T00:00:00Z",
			"user_metadata":      in["user_metadata"],
			"created_at":         "2026-01-01T00:00:00Z",
		})
	})
	mux.HandleFunc("DELETE /auth/v1/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /rest/v1/tenant_users", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.failMembership {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"tenant_users_tenant_id_user_id_key\""}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func testConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Backend.Driver = "supabase"
	cfg.Backend.URL = url
	cfg.Backend.ServiceKey = "service-role"
	cfg.Admin.Enforce = false
	return cfg
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v2/admin/provision", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const provisionBody = `{"email":"owner@acme.io","password":"Sup3r-secret","name":"Owner","tenantId":"t-1"}`

func TestBuild_ProvisionAgainstSupabase(t *testing.T) {
	fake := &fakeSupabase{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	app, err := Build(context.Background(), testConfig(ts.URL))
	require.NoError(t, err)
	defer app.Close()

	rec := post(app.Handler, provisionBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"u-1"`)

	assert.Equal(t, []string{
		"POST /auth/v1/admin/users",
		"POST /rest/v1/profiles",
		"POST /rest/v1/tenant_users",
	}, fake.Calls())

	ready := httptest.NewRecorder()
	app.Handler.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"driver":"supabase"`)
}

func TestBuild_MembershipFailureIsCompensated(t *testing.T) {
	fake := &fakeSupabase{failMembership: true}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	app, err := Build(context.Background(), testConfig(ts.URL))
	require.NoError(t, err)
	defer app.Close()

	rec := post(app.Handler, provisionBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"MEMBERSHIP_CREATION_FAILED"`)
	assert.Contains(t, rec.Body.String(), "tenant_users_tenant_id_user_id_key")

	assert.Equal(t, []string{
		"POST /auth/v1/admin/users",
		"POST /rest/v1/profiles",
		"POST /rest/v1/tenant_users",
		"DELETE /rest/v1/profiles?id=eq.u-1",
		"DELETE /auth/v1/admin/users/u-1",
	}, fake.Calls())
}

func TestBuild_NonPostMakesNoBackendCalls(t *testing.T) {
	fake := &fakeSupabase{}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()

	app, err := Build(context.Background(), testConfig(ts.URL))
	require.NoError(t, err)
	defer app.Close()

	req := httptest.NewRequest(http.MethodGet, "/v2/admin/provision", nil)
	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, fake.Calls())
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Backend.Driver = "firebase"
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}
