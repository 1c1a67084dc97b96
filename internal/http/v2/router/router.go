// Package router contiene el agregador de rutas V2.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/tenantprov/internal/http/v2/controllers/admin"
	healthctrl "github.com/dropDatabas3/tenantprov/internal/http/v2/controllers/health"
	httperrors "github.com/dropDatabas3/tenantprov/internal/http/v2/errors"
	mw "github.com/dropDatabas3/tenantprov/internal/http/v2/middlewares"
	"github.com/dropDatabas3/tenantprov/internal/metrics"
)

// Deps contiene todas las dependencias del router V2.
type Deps struct {
	Admin  *adminctrl.Controllers
	Health *healthctrl.HealthController

	// HTTPMetrics es opcional; MetricsHandler expone /metrics si no es nil.
	HTTPMetrics    *metrics.HTTP
	MetricsHandler http.Handler

	RateLimit mw.RateLimitConfig
	AdminAuth mw.AdminConfig
}

// New arma el handler raíz.
// Orden global: recover -> request id -> logging -> metrics -> security headers.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Std(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(d.HTTPMetrics),
		mw.WithSecurityHeaders(),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		appErr := httperrors.ErrMethodNotAllowed
		if allow := allowedMethods(req); allow != "" {
			appErr = appErr.WithHeader("Allow", allow)
		}
		httperrors.WriteError(w, appErr)
	})

	if d.Health != nil {
		registerHealthRoutes(r, d.Health, d.MetricsHandler)
	}
	if d.Admin != nil {
		registerAdminRoutes(r, d.Admin, d.RateLimit, d.AdminAuth)
	}
	return r
}

var knownMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// allowedMethods arma el header Allow con los métodos registrados para el path.
func allowedMethods(req *http.Request) string {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil || rctx.Routes == nil {
		return ""
	}
	path := req.URL.RawPath
	if path == "" {
		path = req.URL.Path
	}
	var allowed []string
	for _, m := range knownMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return strings.Join(allowed, ", ")
}
