// Package store conecta el driver de backend configurado y expone los
// repositorios que consume el provisioning.
package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// Backend agrega los repositorios de un driver ya conectado.
type Backend struct {
	conn AdapterConnection

	Identities  repository.IdentityRepository
	Profiles    repository.ProfileRepository
	Memberships repository.MembershipRepository
	Tenants     repository.TenantRepository // nil si el driver no lo soporta
}

// Open conecta el driver indicado en cfg.Name y verifica que exponga los
// tres repositorios obligatorios.
func Open(ctx context.Context, cfg AdapterConfig) (*Backend, error) {
	log := logger.From(ctx).With(logger.Component("store"), logger.Driver(cfg.Name))

	conn, err := OpenAdapter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Name, err)
	}

	b, err := NewBackend(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info("backend connected", logger.Bool("tenant_directory", b.Tenants != nil))
	return b, nil
}

// NewBackend arma el Backend desde una conexión existente.
func NewBackend(conn AdapterConnection) (*Backend, error) {
	b := &Backend{
		conn:        conn,
		Identities:  conn.Identities(),
		Profiles:    conn.Profiles(),
		Memberships: conn.Memberships(),
		Tenants:     conn.Tenants(),
	}
	switch {
	case b.Identities == nil:
		return nil, fmt.Errorf("%w: %s identities", ErrIncompleteAdapter, conn.Name())
	case b.Profiles == nil:
		return nil, fmt.Errorf("%w: %s profiles", ErrIncompleteAdapter, conn.Name())
	case b.Memberships == nil:
		return nil, fmt.Errorf("%w: %s memberships", ErrIncompleteAdapter, conn.Name())
	}
	return b, nil
}

// Driver nombre del driver activo.
func (b *Backend) Driver() string { return b.conn.Name() }

// Ping implementa repository.Pinger.
func (b *Backend) Ping(ctx context.Context) error { return b.conn.Ping(ctx) }

// Close libera la conexión.
func (b *Backend) Close() error { return b.conn.Close() }
