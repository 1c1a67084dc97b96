// Package services agrupa todos los services HTTP V2.
// Este es el "composition root" de services: cada dominio tiene su
// aggregator en services/{dominio}/services.go y se instancia acá.
//
//	svcs := services.New(services.Deps{Admin: ..., Health: ...})
//	ctrls := controllers.New(svcs, maxBody)
//	handler := router.New(router.Deps{Admin: ctrls.Admin, ...})
package services

import (
	"github.com/dropDatabas3/tenantprov/internal/http/v2/services/admin"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/services/health"
)

// Deps contiene las dependencias de cada dominio.
type Deps struct {
	Admin  admin.Deps  // Repos del backend, notifier, métricas, opciones de provisioning
	Health health.Deps // Checks de backend y redis
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	Admin  admin.Services  // Provisioning de admins de tenant
	Health health.Services // Health checks (readyz)
}

// New crea el agregador de services. Es el único lugar donde se instancian.
func New(d Deps) *Services {
	return &Services{
		Admin:  admin.NewServices(d.Admin),
		Health: health.NewServices(d.Health),
	}
}
