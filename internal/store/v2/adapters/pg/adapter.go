// Package pg implementa profiles, memberships y el directorio de tenants
// sobre PostgreSQL (pgxpool). Lo usan los drivers que no traen su propia
// base relacional (kratos).
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	store "github.com/dropDatabas3/tenantprov/internal/store/v2"
)

// DB es el subconjunto de *pgxpool.Pool que usan los repos.
// pgxmock.PgxPoolIface lo implementa.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Connect abre un pool y verifica la conexión.
func Connect(ctx context.Context, dsn string, maxOpen, maxIdle int) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	if maxOpen > 0 {
		poolCfg.MaxConns = int32(maxOpen)
	} else {
		poolCfg.MaxConns = 10
	}
	if maxIdle > 0 {
		poolCfg.MinConns = int32(maxIdle)
	} else {
		poolCfg.MinConns = 1
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return pool, nil
}

// Repos agrupa los repositorios relacionales.
type Repos struct {
	Profiles    *ProfileRepo
	Memberships *MembershipRepo
	Tenants     *TenantRepo
}

// NewRepos crea los repos sobre db con los nombres de tabla dados.
func NewRepos(db DB, tables store.Tables) Repos {
	tables = tables.WithDefaults()
	return Repos{
		Profiles:    &ProfileRepo{db: db, table: quote(tables.Profiles)},
		Memberships: &MembershipRepo{db: db, table: quote(tables.Memberships)},
		Tenants:     &TenantRepo{db: db, table: quote(tables.Tenants)},
	}
}

// quote soporta "schema.tabla".
func quote(name string) string {
	return pgx.Identifier(splitQualified(name)).Sanitize()
}

func splitQualified(name string) []string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return []string{name[:i], name[i+1:]}
		}
	}
	return []string{name}
}
