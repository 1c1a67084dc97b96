package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantprov/internal/rate"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mw("a"), nil, mw("b"), mw("c"))
	serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequireAdmin(t *testing.T) {
	cfg := AdminConfig{Enforce: true, Secret: testSecret, Issuer: "tenantprov", Subs: []string{"ops-1"}}
	h := RequireAdmin(cfg)(okHandler())

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"iss": "tenantprov", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, jwt.MapClaims{"iss": "other", "role": "admin"}), http.StatusUnauthorized},
		{"not admin", "Bearer " + signToken(t, jwt.MapClaims{"iss": "tenantprov", "sub": "u1", "role": "member"}), http.StatusForbidden},
		{"role admin", "Bearer " + signToken(t, jwt.MapClaims{"iss": "tenantprov", "role": "admin"}), http.StatusNoContent},
		{"is_admin", "Bearer " + signToken(t, jwt.MapClaims{"iss": "tenantprov", "is_admin": true}), http.StatusNoContent},
		{"custom roles", "Bearer " + signToken(t, jwt.MapClaims{"iss": "tenantprov", "custom": map[string]any{"roles": []string{"viewer", "ADMIN"}}}), http.StatusNoContent},
		{"sub allowlist", "Bearer " + signToken(t, jwt.MapClaims{"iss": "tenantprov", "sub": "ops-1"}), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v2/admin/provision", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := serve(h, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAdmin_RejectsOtherAlgorithms(t *testing.T) {
	h := RequireAdmin(AdminConfig{Enforce: true, Secret: testSecret})(okHandler())

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
}

func TestRequireAdmin_NotEnforced(t *testing.T) {
	h := RequireAdmin(AdminConfig{Enforce: false})(okHandler())
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin_ClaimsInContext(t *testing.T) {
	var sub string
	h := RequireAdmin(AdminConfig{Enforce: true, Secret: testSecret})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = ClaimString(GetClaims(r.Context()), "sub")
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "admin-7", "role": "admin"}))
	serve(h, req)
	assert.Equal(t, "admin-7", sub)
}

func TestWithRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMultiRedisLimiter(client, "test:"),
		Rules:   []RateRule{{Name: "ip", Limit: 2, Window: time.Minute, Key: IPRateKey}},
	})(okHandler())

	newReq := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v2/admin/provision", nil)
		req.RemoteAddr = ip + ":5555"
		return req
	}

	assert.Equal(t, http.StatusNoContent, serve(h, newReq("10.0.0.1")).Code)
	rec := serve(h, newReq("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(h, newReq("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// otra IP tiene su propio contador
	assert.Equal(t, http.StatusNoContent, serve(h, newReq("10.0.0.2")).Code)
}

func TestWithRateLimit_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	h := WithRateLimit(RateLimitConfig{
		Limiter: rate.NewMultiRedisLimiter(client, "test:"),
		Rules:   []RateRule{{Name: "ip", Limit: 1, Window: time.Minute, Key: IPRateKey}},
	})(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, httptest.NewRequest(http.MethodPost, "/", nil)).Code)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := serve(h, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
	rec = serve(h, req)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRecover())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
