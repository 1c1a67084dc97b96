// Package kratos implementa el driver "kratos": identidades en Ory Kratos
// (admin API) y profiles/memberships/tenants en Postgres.
package kratos

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	ory "github.com/ory/kratos-client-go"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	store "github.com/dropDatabas3/tenantprov/internal/store/v2"
	"github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/pg"
)

func init() {
	store.RegisterAdapter(&kratosAdapter{})
}

type kratosAdapter struct{}

func (a *kratosAdapter) Name() string { return "kratos" }

func (a *kratosAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.KratosAdminURL == "" {
		return nil, errors.New("kratos: admin url is required")
	}
	if cfg.DSN == "" {
		return nil, errors.New("kratos: storage dsn is required for profiles and memberships")
	}

	pool, err := pg.Connect(ctx, cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("kratos: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	api := NewAPIClient(cfg.KratosAdminURL, hc)
	repos := pg.NewRepos(pool, cfg.Tables)

	return &connection{
		api:        api,
		pool:       pool,
		identities: NewIdentityRepo(api, cfg.KratosSchemaID),
		repos:      repos,
	}, nil
}

// NewAPIClient crea el cliente del admin API.
func NewAPIClient(adminURL string, hc *http.Client) *ory.APIClient {
	conf := ory.NewConfiguration()
	conf.Servers = []ory.ServerConfiguration{{URL: adminURL}}
	conf.HTTPClient = hc
	conf.DefaultHeader = map[string]string{"Accept": "application/json"}
	return ory.NewAPIClient(conf)
}

type connection struct {
	api        *ory.APIClient
	pool       *pgxpool.Pool
	identities *IdentityRepo
	repos      pg.Repos
}

func (c *connection) Name() string { return "kratos" }

func (c *connection) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("kratos: postgres: %w: %w", repository.ErrUnavailable, err)
	}
	if _, _, err := c.api.MetadataAPI.IsAlive(ctx).Execute(); err != nil {
		return fmt.Errorf("kratos: admin api: %w: %w", repository.ErrUnavailable, err)
	}
	return nil
}

func (c *connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *connection) Identities() repository.IdentityRepository    { return c.identities }
func (c *connection) Profiles() repository.ProfileRepository       { return c.repos.Profiles }
func (c *connection) Memberships() repository.MembershipRepository { return c.repos.Memberships }
func (c *connection) Tenants() repository.TenantRepository         { return c.repos.Tenants }
