// Package supabase implementa el driver "supabase": identidades vía el
// admin API de GoTrue y tablas vía PostgREST, ambos detrás de la misma
// URL base y service key.
package supabase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	store "github.com/dropDatabas3/tenantprov/internal/store/v2"
)

func init() {
	store.RegisterAdapter(&supabaseAdapter{})
}

type supabaseAdapter struct{}

func (a *supabaseAdapter) Name() string { return "supabase" }

func (a *supabaseAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" {
		return nil, errors.New("supabase: base url and service key are required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	c := &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.ServiceKey,
		http:    hc,
	}
	tables := cfg.Tables.WithDefaults()
	return &connection{
		c:           c,
		identities:  &identityRepo{c: c},
		profiles:    &profileRepo{c: c, table: tables.Profiles},
		memberships: &membershipRepo{c: c, table: tables.Memberships},
		tenants:     &tenantRepo{c: c, table: tables.Tenants},
	}, nil
}

type connection struct {
	c           *client
	identities  *identityRepo
	profiles    *profileRepo
	memberships *membershipRepo
	tenants     *tenantRepo
}

func (c *connection) Name() string { return "supabase" }

// Ping consulta el health endpoint de GoTrue.
func (c *connection) Ping(ctx context.Context) error {
	return c.c.do(ctx, "ping", http.MethodGet, "/auth/v1/health", nil, nil, nil)
}

func (c *connection) Close() error {
	c.c.http.CloseIdleConnections()
	return nil
}

func (c *connection) Identities() repository.IdentityRepository    { return c.identities }
func (c *connection) Profiles() repository.ProfileRepository       { return c.profiles }
func (c *connection) Memberships() repository.MembershipRepository { return c.memberships }
func (c *connection) Tenants() repository.TenantRepository         { return c.tenants }
