package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/tenantprov/internal/http/v2/controllers/health"
)

// registerHealthRoutes registra /readyz y /metrics. Son públicos.
func registerHealthRoutes(r chi.Router, c *ctrl.HealthController, metricsHandler http.Handler) {
	r.Get("/readyz", c.Readyz)
	r.Head("/readyz", c.Readyz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
}
