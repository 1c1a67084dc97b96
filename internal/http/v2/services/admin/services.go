// Package admin contiene los services administrativos V2.
package admin

import (
	"time"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// Deps contiene las dependencias para crear los services admin.
type Deps struct {
	Identities  repository.IdentityRepository
	Profiles    repository.ProfileRepository
	Memberships repository.MembershipRepository

	// Tenants es opcional: si es nil no se verifica que el tenant exista
	// antes de crear la identidad (la FK del backend sigue aplicando).
	Tenants repository.TenantRepository

	// Passwords es opcional: chequeo local previo a crear la identidad.
	Passwords PasswordChecker

	// Notifier es opcional (soft fail).
	Notifier Notifier
	// Metrics es opcional.
	Metrics Recorder

	Provisioning ProvisioningOptions
}

// ProvisioningOptions controla el comportamiento ante fallos parciales.
type ProvisioningOptions struct {
	// Compensate borra los registros ya creados cuando falla un paso posterior.
	Compensate bool
	// CompensationTimeout acota las llamadas de compensación. Default 10s.
	CompensationTimeout time.Duration
	// RequireUUIDTenant exige que tenantId sea un UUID.
	RequireUUIDTenant bool
	// Role asignado en la membresía. Default repository.RoleAdmin.
	Role string
}

// Services agrupa todos los services del dominio admin.
type Services struct {
	Provision ProvisionService
}

// NewServices crea el agregador de services admin.
func NewServices(d Deps) Services {
	return Services{
		Provision: NewProvisionService(d),
	}
}
