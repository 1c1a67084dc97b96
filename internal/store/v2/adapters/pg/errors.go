package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// mapError traduce errores de pgx a los sentinels de repository,
// conservando el mensaje de Postgres como detalle.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("pg: %s: %w", op, repository.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("pg: %s: %w: %w", op, repository.ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		// sin PgError: fallo de conexión/red
		return fmt.Errorf("pg: %s: %w: %w", op, repository.ErrUnavailable, err)
	}

	be := &repository.BackendError{Code: pgErr.Code, Detail: pgErr.Message, Kind: repository.ErrBackend}
	switch {
	case pgErr.Code == "23505": // unique_violation
		be.Kind = repository.ErrConflict
	case pgErr.Code == "23503": // foreign_key_violation
		be.Kind = repository.ErrNotFound
	case strings.HasPrefix(pgErr.Code, "22"), pgErr.Code == "23502", pgErr.Code == "23514":
		be.Kind = repository.ErrInvalidInput
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57P"):
		be.Kind = repository.ErrUnavailable
	}
	return fmt.Errorf("pg: %s: %w", op, be)
}
