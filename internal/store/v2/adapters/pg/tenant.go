package pg

import (
	"context"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// TenantRepo implementa repository.TenantRepository (solo lectura).
type TenantRepo struct {
	db    DB
	table string
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	var t repository.Tenant
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, name FROM `+r.table+` WHERE id = $1`, id,
	).Scan(&t.ID, &t.Slug, &t.Name)
	if err != nil {
		return nil, mapError("get tenant", err)
	}
	return &t, nil
}
