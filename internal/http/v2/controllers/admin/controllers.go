// Package admin contiene los controllers administrativos V2.
package admin

import svc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/admin"

// Controllers agrupa todos los controllers del dominio admin.
type Controllers struct {
	Provision *ProvisionController
}

// NewControllers crea el agregador de controllers admin.
func NewControllers(s svc.Services, maxBody int64) *Controllers {
	return &Controllers{
		Provision: NewProvisionController(s.Provision, maxBody),
	}
}
