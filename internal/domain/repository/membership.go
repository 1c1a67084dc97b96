package repository

import "context"

// RoleAdmin es el rol que el provisioning asigna en el tenant.
const RoleAdmin = "admin"

// Membership asocia un usuario a un tenant con un rol.
type Membership struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// MembershipRepository opera sobre la tabla de membresías.
type MembershipRepository interface {
	// Insert crea la membresía. Retorna ErrNotFound si el tenant o el
	// usuario referenciado no existe (violación de FK).
	Insert(ctx context.Context, m Membership) error
}
