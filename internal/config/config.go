package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	} `yaml:"server"`

	// Backend es el servicio de auth + datos contra el que se provisiona.
	Backend struct {
		Driver         string        `yaml:"driver"` // supabase | kratos
		URL            string        `yaml:"url"`
		ServiceKey     string        `yaml:"service_key"`
		KratosAdminURL string        `yaml:"kratos_admin_url"`
		KratosSchemaID string        `yaml:"kratos_schema_id"`
		Timeout        time.Duration `yaml:"timeout"`
		Tables         struct {
			Profiles    string `yaml:"profiles"`
			Memberships string `yaml:"memberships"`
			Tenants     string `yaml:"tenants"`
		} `yaml:"tables"`
	} `yaml:"backend"`

	// Storage: Postgres propio (driver kratos).
	Storage struct {
		DSN            string `yaml:"dsn"`
		MaxOpenConns   int    `yaml:"max_open_conns"`
		MaxIdleConns   int    `yaml:"max_idle_conns"`
		MigrateOnStart bool   `yaml:"migrate_on_start"`
	} `yaml:"storage"`

	Provisioning struct {
		Compensate          bool          `yaml:"compensate"`
		CompensationTimeout time.Duration `yaml:"compensation_timeout"`
		RequireUUIDTenant   bool          `yaml:"require_uuid_tenant"`
		CheckTenant         bool          `yaml:"check_tenant"`
		TenantCacheTTL      time.Duration `yaml:"tenant_cache_ttl"`

		// Password: chequeo local antes de llamar al backend. MinLength 0
		// y sin flags deja la política solo en manos del backend.
		Password struct {
			MinLength     int    `yaml:"min_length"`
			RequireUpper  bool   `yaml:"require_upper"`
			RequireLower  bool   `yaml:"require_lower"`
			RequireDigit  bool   `yaml:"require_digit"`
			RequireSymbol bool   `yaml:"require_symbol"`
			BlacklistPath string `yaml:"blacklist_path"`
		} `yaml:"password"`
	} `yaml:"provisioning"`

	Cache struct {
		Redis struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		PerIP   struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"per_ip"`
		PerTenant struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"per_tenant"`
	} `yaml:"rate"`

	Admin struct {
		Enforce   bool     `yaml:"enforce"`
		JWTSecret string   `yaml:"jwt_secret"`
		Issuer    string   `yaml:"issuer"`
		Subs      []string `yaml:"subs"`
	} `yaml:"admin"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		TLSMode  string `yaml:"tls_mode"`
	} `yaml:"smtp"`

	Welcome struct {
		Enabled  bool   `yaml:"enabled"`
		AppName  string `yaml:"app_name"`
		LoginURL string `yaml:"login_url"`
	} `yaml:"welcome"`
}

// Default retorna la config con defaults. Load parte de acá, así los
// campos ausentes en el YAML (incluidos bools) conservan su default.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.Log.Level = "info"

	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.MaxBodyBytes = 1 << 20

	c.Backend.Driver = "supabase"
	c.Backend.Timeout = 15 * time.Second
	c.Backend.KratosSchemaID = "default"

	c.Provisioning.Compensate = true
	c.Provisioning.CompensationTimeout = 10 * time.Second
	c.Provisioning.TenantCacheTTL = 5 * time.Minute

	c.Cache.Redis.Prefix = "tenantprov:"

	c.Rate.PerIP.Limit = 30
	c.Rate.PerIP.Window = time.Minute
	c.Rate.PerTenant.Limit = 100
	c.Rate.PerTenant.Window = time.Hour

	c.Admin.Enforce = true

	c.SMTP.Port = 587
	c.SMTP.TLSMode = "auto"
	return &c
}

// Load lee el YAML en path (si existe) y aplica overrides de entorno.
// Un path inexistente no es error: la config sale de defaults + env.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.Backend.Driver = strings.ToLower(strings.TrimSpace(c.Backend.Driver))
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	return c, nil
}

// ---- Helpers env ----

func getEnvStr(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, true
		}
	}
	return "", false
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvDur("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// BACKEND (SUPABASE_* como alias)
	if v, ok := getEnvStr("BACKEND_DRIVER"); ok {
		c.Backend.Driver = v
	}
	if v, ok := getEnvStr("BACKEND_URL", "SUPABASE_URL"); ok {
		c.Backend.URL = v
	}
	if v, ok := getEnvStr("BACKEND_SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY"); ok {
		c.Backend.ServiceKey = v
	}
	if v, ok := getEnvStr("KRATOS_ADMIN_URL"); ok {
		c.Backend.KratosAdminURL = v
	}
	if v, ok := getEnvDur("BACKEND_TIMEOUT"); ok {
		c.Backend.Timeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("STORAGE_MIGRATE_ON_START"); ok {
		c.Storage.MigrateOnStart = v
	}

	// PROVISIONING
	if v, ok := getEnvBool("PROVISION_COMPENSATE"); ok {
		c.Provisioning.Compensate = v
	}
	if v, ok := getEnvDur("PROVISION_COMPENSATION_TIMEOUT"); ok {
		c.Provisioning.CompensationTimeout = v
	}
	if v, ok := getEnvBool("PROVISION_CHECK_TENANT"); ok {
		c.Provisioning.CheckTenant = v
	}
	if v, ok := getEnvBool("PROVISION_REQUIRE_UUID_TENANT"); ok {
		c.Provisioning.RequireUUIDTenant = v
	}
	if v, ok := getEnvInt("PASSWORD_MIN_LENGTH"); ok {
		c.Provisioning.Password.MinLength = v
	}
	if v, ok := getEnvStr("PASSWORD_BLACKLIST_PATH"); ok {
		c.Provisioning.Password.BlacklistPath = v
	}

	// REDIS / RATE
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}

	// ADMIN
	if v, ok := getEnvBool("ADMIN_ENFORCE"); ok {
		c.Admin.Enforce = v
	}
	if v, ok := getEnvStr("ADMIN_JWT_SECRET"); ok {
		c.Admin.JWTSecret = v
	}
	if v, ok := getEnvCSV("ADMIN_SUBS"); ok {
		c.Admin.Subs = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS_MODE"); ok {
		c.SMTP.TLSMode = v
	}
	if v, ok := getEnvBool("WELCOME_EMAIL_ENABLED"); ok {
		c.Welcome.Enabled = v
	}
}

// Validate reporta todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.Server.Addr == "" {
		add("server.addr is required")
	}

	switch c.Backend.Driver {
	case "supabase":
		if c.Backend.URL == "" {
			add("backend.url is required (BACKEND_URL)")
		} else if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("backend.url must be an absolute http(s) url")
		}
		if c.Backend.ServiceKey == "" {
			add("backend.service_key is required (BACKEND_SERVICE_KEY)")
		}
	case "kratos":
		if c.Backend.KratosAdminURL == "" {
			add("backend.kratos_admin_url is required (KRATOS_ADMIN_URL)")
		}
		if c.Storage.DSN == "" {
			add("storage.dsn is required for driver kratos (STORAGE_DSN)")
		}
	default:
		add("backend.driver %q not supported (supabase|kratos)", c.Backend.Driver)
	}

	if c.Admin.Enforce && len(c.Admin.JWTSecret) < 32 {
		add("admin.jwt_secret must be at least 32 bytes when admin.enforce is true")
	}
	if c.Rate.Enabled && c.Cache.Redis.Addr == "" {
		add("cache.redis.addr is required when rate.enabled is true")
	}
	if c.Welcome.Enabled && (c.SMTP.Host == "" || c.SMTP.From == "") {
		add("smtp.host and smtp.from are required when welcome.enabled is true")
	}
	if c.Provisioning.Password.MinLength < 0 {
		add("provisioning.password.min_length must not be negative")
	}
	if c.Provisioning.CompensationTimeout <= 0 {
		add("provisioning.compensation_timeout must be positive")
	}
	return errors.Join(errs...)
}

// IsProd indica si corre en producción.
func (c *Config) IsProd() bool { return c.App.Env == "prod" || c.App.Env == "production" }
