// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	httperrors "github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/helpers"
	svc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/health"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed.WithHeader("Allow", "GET, HEAD"))
		return
	}

	response := c.service.Check(ctx)

	if response.Version != "" {
		w.Header().Set("X-Service-Version", response.Version)
	}
	if response.Commit != "" {
		w.Header().Set("X-Service-Commit", response.Commit)
	}

	statusCode := http.StatusOK
	if response.Status == "unavailable" {
		statusCode = http.StatusServiceUnavailable
	}

	log.Debug("health check completed", logger.String("status", response.Status))
	helpers.WriteJSON(w, statusCode, response)
}
