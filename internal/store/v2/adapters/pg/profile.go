package pg

import (
	"context"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// ProfileRepo implementa repository.ProfileRepository.
type ProfileRepo struct {
	db    DB
	table string
}

func (r *ProfileRepo) Insert(ctx context.Context, p repository.Profile) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO `+r.table+` (id, email, name) VALUES ($1, $2, $3)`,
		p.ID, p.Email, p.Name,
	)
	return mapError("insert profile", err)
}

func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		return mapError("delete profile", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
