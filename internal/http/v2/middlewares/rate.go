package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
	"github.com/dropDatabas3/tenantprov/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting. Una clave
// vacía hace que la regla no aplique a ese request.
type RateKeyFunc func(r *http.Request) string

// RateRule es un límite independiente (ej: por IP, por tenant).
type RateRule struct {
	Name   string
	Limit  int
	Window time.Duration
	Key    RateKeyFunc
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.MultiLimiter
	Rules   []RateRule
}

// IPRateKey genera una clave basada solo en IP.
func IPRateKey(r *http.Request) string {
	return clientIP(r)
}

// TenantRateKey usa el {tenantId} de la ruta. Debe montarse con r.With
// para que chi ya haya resuelto los parámetros.
func TenantRateKey(r *http.Request) string {
	return chi.URLParam(r, "tenantId")
}

// WithRateLimit evalúa todas las reglas; la primera que rechaza corta con 429.
// Si Redis falla, el request pasa (fail-open) y se loguea.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil || len(cfg.Rules) == 0 {
		return nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, rule := range cfg.Rules {
				if rule.Limit <= 0 || rule.Key == nil {
					continue
				}
				key := rule.Key(r)
				if key == "" {
					continue
				}

				res, err := cfg.Limiter.AllowWithLimits(r.Context(), rule.Name+":"+key, rule.Limit, rule.Window)
				if err != nil {
					logger.From(r.Context()).Warn("rate limiter unavailable",
						logger.String("rule", rule.Name),
						logger.Err(err),
					)
					continue
				}

				setRateHeaders(w, res)
				if !res.Allowed {
					secs := int(res.RetryAfter.Round(time.Second) / time.Second)
					if secs < 1 {
						secs = 1
					}
					errors.WriteError(w, errors.ErrTooManyRequests.
						WithHeader("Retry-After", strconv.Itoa(secs)).
						WithDetail(rule.Name))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setRateHeaders(w http.ResponseWriter, res rate.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}
