package store

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// Adapter representa un backend capaz de crear los repositorios del
// provisioning.
type Adapter interface {
	// Name retorna el nombre del driver (ej: "supabase", "kratos").
	Name() string

	// Connect establece conexión con el backend.
	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection representa una conexión activa.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	Identities() repository.IdentityRepository
	Profiles() repository.ProfileRepository
	Memberships() repository.MembershipRepository

	// Tenants puede ser nil si el backend no expone el directorio.
	Tenants() repository.TenantRepository
}

// Tables nombres de tablas del backend.
type Tables struct {
	Profiles    string
	Memberships string
	Tenants     string
}

// DefaultTables son los nombres usados por el schema de migrations/postgres.
var DefaultTables = Tables{
	Profiles:    "profiles",
	Memberships: "tenant_users",
	Tenants:     "tenants",
}

// WithDefaults completa los nombres vacíos.
func (t Tables) WithDefaults() Tables {
	if t.Profiles == "" {
		t.Profiles = DefaultTables.Profiles
	}
	if t.Memberships == "" {
		t.Memberships = DefaultTables.Memberships
	}
	if t.Tenants == "" {
		t.Tenants = DefaultTables.Tenants
	}
	return t
}

// AdapterConfig configuración para conectar a un backend.
type AdapterConfig struct {
	// Name del driver: "supabase", "kratos"
	Name string

	// BaseURL y ServiceKey del servicio hosteado (supabase)
	BaseURL    string
	ServiceKey string

	// KratosAdminURL URL del admin API de Ory Kratos (driver kratos)
	KratosAdminURL string
	// KratosSchemaID schema de identidad. Default "default".
	KratosSchemaID string

	// DSN de Postgres para profiles/memberships/tenants (driver kratos)
	DSN          string
	MaxOpenConns int
	MaxIdleConns int

	Tables Tables

	// Timeout por request HTTP saliente. Default 15s.
	HTTPTimeout time.Duration
	// HTTPClient opcional (tests).
	HTTPClient *http.Client
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión usando el adapter especificado en la config.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrAdapterNotRegistered, cfg.Name, ListAdapters())
	}
	cfg.Tables = cfg.Tables.WithDefaults()
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	return a.Connect(ctx, cfg)
}
