package health

import svc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/health"

// Controllers agrupa los controllers de health.
type Controllers struct {
	Health *HealthController
}

// NewControllers crea el aggregator.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: NewHealthController(s.Health)}
}
