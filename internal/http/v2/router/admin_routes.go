package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/tenantprov/internal/http/v2/controllers/admin"
	mw "github.com/dropDatabas3/tenantprov/internal/http/v2/middlewares"
)

// registerAdminRoutes registra las rutas de provisioning.
// Van en un Group para que rate limit y auth corran después del routing
// (TenantRateKey necesita {tenantId} resuelto).
func registerAdminRoutes(r chi.Router, c *ctrl.Controllers, rl mw.RateLimitConfig, auth mw.AdminConfig) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Std(
			mw.WithRateLimit(rl),
			mw.RequireAdmin(auth),
		)...)

		// Todos los métodos: el controller responde 405 con el envelope
		// de provisioning sin tocar el backend.
		r.HandleFunc("/v2/admin/provision", c.Provision.Provision)
		r.Post("/v2/admin/tenants/{tenantId}/users", c.Provision.CreateTenantUser)
	})
}
