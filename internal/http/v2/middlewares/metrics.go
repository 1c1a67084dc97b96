package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tenantprov/internal/metrics"
)

// WithMetrics registra conteo, latencia e in-flight por ruta. Usa el
// patrón de chi (no el path crudo) para acotar la cardinalidad.
func WithMetrics(m *metrics.HTTP) Middleware {
	if m == nil {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.Begin(r.Method)
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			done(route, rec.status)
		})
	}
}
