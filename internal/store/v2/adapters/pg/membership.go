package pg

import (
	"context"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// MembershipRepo implementa repository.MembershipRepository.
type MembershipRepo struct {
	db    DB
	table string
}

func (r *MembershipRepo) Insert(ctx context.Context, m repository.Membership) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO `+r.table+` (tenant_id, user_id, role, is_active) VALUES ($1, $2, $3, $4)`,
		m.TenantID, m.UserID, m.Role, m.IsActive,
	)
	return mapError("insert membership", err)
}
