package repository

import "context"

// Tenant es un namespace aislado de clientes.
type Tenant struct {
	ID   string `json:"id"`
	Slug string `json:"slug,omitempty"`
	Name string `json:"name,omitempty"`
}

// TenantRepository resuelve tenants existentes (solo lectura).
type TenantRepository interface {
	// GetByID retorna ErrNotFound si el tenant no existe.
	GetByID(ctx context.Context, id string) (*Tenant, error)
}

// Pinger es implementado por los backends que soportan health check.
type Pinger interface {
	Ping(ctx context.Context) error
}
