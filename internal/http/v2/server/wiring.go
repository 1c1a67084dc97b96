// Package server arma el handler HTTP V2 a partir de la config.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/tenantprov/internal/config"
	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	emailv2 "github.com/dropDatabas3/tenantprov/internal/email/v2"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/controllers"
	mw "github.com/dropDatabas3/tenantprov/internal/http/v2/middlewares"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/router"
	"github.com/dropDatabas3/tenantprov/internal/http/v2/services"
	adminsvc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/admin"
	healthsvc "github.com/dropDatabas3/tenantprov/internal/http/v2/services/health"
	"github.com/dropDatabas3/tenantprov/internal/infra/tenantcache"
	"github.com/dropDatabas3/tenantprov/internal/metrics"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
	"github.com/dropDatabas3/tenantprov/internal/rate"
	"github.com/dropDatabas3/tenantprov/internal/security/password"
	store "github.com/dropDatabas3/tenantprov/internal/store/v2"
)

// App contiene el handler y los recursos que hay que cerrar al apagar.
type App struct {
	Handler http.Handler
	Backend *store.Backend

	redis *rdb.Client
}

// Close libera backend y redis.
func (a *App) Close() error {
	var first error
	if a.redis != nil {
		first = a.redis.Close()
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BackendConfig traduce la config a la del registry de adapters.
func BackendConfig(cfg *config.Config) store.AdapterConfig {
	return store.AdapterConfig{
		Name:           cfg.Backend.Driver,
		BaseURL:        cfg.Backend.URL,
		ServiceKey:     cfg.Backend.ServiceKey,
		KratosAdminURL: cfg.Backend.KratosAdminURL,
		KratosSchemaID: cfg.Backend.KratosSchemaID,
		DSN:            cfg.Storage.DSN,
		MaxOpenConns:   cfg.Storage.MaxOpenConns,
		MaxIdleConns:   cfg.Storage.MaxIdleConns,
		HTTPTimeout:    cfg.Backend.Timeout,
		Tables: store.Tables{
			Profiles:    cfg.Backend.Tables.Profiles,
			Memberships: cfg.Backend.Tables.Memberships,
			Tenants:     cfg.Backend.Tables.Tenants,
		},
	}
}

func passwordChecker(cfg *config.Config) (*password.Checker, error) {
	pc := cfg.Provisioning.Password
	bl, err := password.LoadBlacklist(pc.BlacklistPath)
	if err != nil {
		return nil, fmt.Errorf("password blacklist: %w", err)
	}
	policy := password.Policy{
		MinLength:     pc.MinLength,
		RequireUpper:  pc.RequireUpper,
		RequireLower:  pc.RequireLower,
		RequireDigit:  pc.RequireDigit,
		RequireSymbol: pc.RequireSymbol,
	}
	if policy.IsZero() && bl.Len() == 0 {
		return nil, nil
	}
	return &password.Checker{Policy: policy, Blacklist: bl}, nil
}

// Build conecta el backend y arma el handler. Los adapters deben estar
// registrados (import de adapters/all en main).
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.From(ctx).With(logger.Component("server.wiring"))

	backend, err := store.Open(ctx, BackendConfig(cfg))
	if err != nil {
		return nil, err
	}
	app := &App{Backend: backend}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	provMetrics, err := metrics.NewProvisioning(reg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var redisCheck healthsvc.Check
	if addr := cfg.Cache.Redis.Addr; addr != "" {
		app.redis = rdb.NewClient(&rdb.Options{
			Addr:     addr,
			DB:       cfg.Cache.Redis.DB,
			Password: cfg.Cache.Redis.Password,
		})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			// rate limit es fail-open: seguimos, /readyz reporta degraded
			log.Warn("redis ping failed", logger.String("addr", addr), logger.Err(err))
		}
		redisCheck = func(ctx context.Context) error { return app.redis.Ping(ctx).Err() }
	}

	// Directorio de tenants cacheado: lo usan el precheck y el email de bienvenida.
	var tenants repository.TenantRepository
	if backend.Tenants != nil {
		tenants = tenantcache.New(backend.Tenants, tenantcache.Config{TTL: cfg.Provisioning.TenantCacheTTL})
	}

	deps := adminsvc.Deps{
		Identities:  backend.Identities,
		Profiles:    backend.Profiles,
		Memberships: backend.Memberships,
		Metrics:     provMetrics,
		Provisioning: adminsvc.ProvisioningOptions{
			Compensate:          cfg.Provisioning.Compensate,
			CompensationTimeout: cfg.Provisioning.CompensationTimeout,
			RequireUUIDTenant:   cfg.Provisioning.RequireUUIDTenant,
		},
	}
	if checker, err := passwordChecker(cfg); err != nil {
		_ = app.Close()
		return nil, err
	} else if checker != nil {
		deps.Passwords = checker
	}
	if cfg.Provisioning.CheckTenant {
		if tenants == nil {
			_ = app.Close()
			return nil, fmt.Errorf("provisioning.check_tenant: driver %q has no tenant directory", backend.Driver())
		}
		deps.Tenants = tenants
	}
	if cfg.Welcome.Enabled && cfg.SMTP.Host != "" {
		sender := emailv2.NewSMTPSender(emailv2.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.From,
			TLSMode:   cfg.SMTP.TLSMode,
		})
		deps.Notifier = emailv2.NewWelcomeNotifier(sender, tenants, cfg.Welcome.AppName, cfg.Welcome.LoginURL)
	}

	var rl mw.RateLimitConfig
	if cfg.Rate.Enabled && app.redis != nil {
		rl = mw.RateLimitConfig{
			Limiter: rate.NewMultiRedisLimiter(app.redis, cfg.Cache.Redis.Prefix+"rl:"),
			Rules: []mw.RateRule{
				{Name: "ip", Limit: cfg.Rate.PerIP.Limit, Window: cfg.Rate.PerIP.Window, Key: mw.IPRateKey},
				{Name: "tenant", Limit: cfg.Rate.PerTenant.Limit, Window: cfg.Rate.PerTenant.Window, Key: mw.TenantRateKey},
			},
		}
	}

	svcs := services.New(services.Deps{
		Admin: deps,
		Health: healthsvc.Deps{
			Driver:       backend.Driver(),
			BackendCheck: backend.Ping,
			RedisCheck:   redisCheck,
		},
	})
	ctrls := controllers.New(svcs, cfg.Server.MaxBodyBytes)

	app.Handler = router.New(router.Deps{
		Admin:          ctrls.Admin,
		Health:         ctrls.Health.Health,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimit:      rl,
		AdminAuth: mw.AdminConfig{
			Enforce: cfg.Admin.Enforce,
			Secret:  []byte(cfg.Admin.JWTSecret),
			Issuer:  cfg.Admin.Issuer,
			Subs:    cfg.Admin.Subs,
		},
	})

	log.Info("v2 handler ready",
		logger.Driver(backend.Driver()),
		logger.Bool("compensate", cfg.Provisioning.Compensate),
		logger.Bool("rate_limit", rl.Limiter != nil),
		logger.Bool("welcome_email", deps.Notifier != nil),
	)
	return app, nil
}
