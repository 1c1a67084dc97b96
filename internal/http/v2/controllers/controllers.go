// Package controllers agrupa todos los controllers HTTP V2.
// Se crean a partir de services.New y se pasan al router.
package controllers

import (
	"github.com/dropDatabas3/tenantprov/internal/http/v2/controllers/admin"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/controllers/health"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/services"
)

// Controllers agrupa todos los sub-controllers por dominio.
type Controllers struct {
	Admin  *admin.Controllers  // Provisioning
	Health *health.Controllers // Health checks (readyz)
}

// New crea el agregador de controllers. maxBody acota los bodies JSON.
func New(svc *services.Services, maxBody int64) *Controllers {
	return &Controllers{
		Admin:  admin.NewControllers(svc.Admin, maxBody),
		Health: health.NewControllers(svc.Health),
	}
}
