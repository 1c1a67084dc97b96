package admin

import "github.com/dropDatabas3/tenantprov/internal/domain/repository"

// ProvisionRequest para POST /v2/admin/provision y
// POST /v2/admin/tenants/{tenantId}/users (ahí el tenant sale del path).
type ProvisionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // Texto plano, el backend lo hashea
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
}

// ProvisionResponse es la respuesta 201.
type ProvisionResponse struct {
	Success  bool                `json:"success"`
	User     repository.Identity `json:"user"`
	TenantID string              `json:"tenant_id"`
	Role     string              `json:"role"`
}
