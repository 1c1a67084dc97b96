// Command tenantprov es la CLI operativa: levanta el server, aplica
// migraciones y provisiona admins de tenant contra un server remoto.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tenantprov/internal/config"
	v2server "github.com/dropDatabas3/tenantprov/internal/http/v2/server"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
	store "github.com/dropDatabas3/tenantprov/internal/store/v2"

	_ "github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/all"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tenantprov",
		Short:         "Provisioning de usuarios admin de tenant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "Path to YAML config (env CONFIG_PATH)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "tenantprov"})
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newConfigCmd(load),
		newTokenCmd(load),
		newProvisionCmd(),
	)
	return root
}

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el server HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Storage.MigrateOnStart {
				if _, err := v2server.Migrate(ctx, cfg); err != nil {
					return err
				}
			}
			app, err := v2server.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return v2server.Serve(ctx, cfg, app.Handler)
		},
	}
}

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema embebido (profiles, tenants, tenant_users) sobre storage.dsn",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			res, err := v2server.Migrate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied=%v skipped=%v (%s)\n", res.Applied, res.Skipped, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

func newConfigCmd(load loader) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Utilidades de configuración"}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Valida la config y muestra un resumen (sin secretos)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "env=%s addr=%s\n", cfg.App.Env, cfg.Server.Addr)
			fmt.Fprintf(out, "driver=%s drivers_available=%s\n", cfg.Backend.Driver, strings.Join(store.ListAdapters(), ","))
			fmt.Fprintf(out, "compensate=%t check_tenant=%t rate_limit=%t admin_enforce=%t welcome=%t\n",
				cfg.Provisioning.Compensate, cfg.Provisioning.CheckTenant,
				cfg.Rate.Enabled, cfg.Admin.Enforce, cfg.Welcome.Enabled)
			fmt.Fprintln(out, "ok")
			return nil
		},
	})
	return cfgCmd
}

// newTokenCmd emite un token admin firmado con admin.jwt_secret (para ops y pruebas).
func newTokenCmd(load loader) *cobra.Command {
	var sub string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un token admin HS256",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if len(cfg.Admin.JWTSecret) < 32 {
				return errors.New("admin.jwt_secret must be at least 32 bytes")
			}
			tok, err := mintAdminToken([]byte(cfg.Admin.JWTSecret), cfg.Admin.Issuer, sub, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "tenantprov-cli", "Subject del token")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "Vigencia del token")
	return cmd
}

func mintAdminToken(secret []byte, issuer, sub string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func newProvisionCmd() *cobra.Command {
	var (
		baseURL  = envOr("TENANTPROV_URL", "http://localhost:8080")
		token    = envOr("TENANTPROV_TOKEN", "")
		out      = envOr("TENANTPROV_OUT", "text")
		timeout  = 30 * time.Second
		email    string
		password string
		name     string
		tenantID string
	)
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provisiona un usuario admin de tenant en un server remoto",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("TENANTPROV_PASSWORD")
			}
			var missing []string
			for flag, v := range map[string]string{"email": email, "password": password, "name": name, "tenant": tenantID} {
				if strings.TrimSpace(v) == "" {
					missing = append(missing, "--"+flag)
				}
			}
			if len(missing) > 0 {
				sort.Strings(missing)
				return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
			}

			cl := &client{
				BaseURL:   baseURL,
				Token:     token,
				OutFormat: out,
				HTTP:      &http.Client{Timeout: timeout},
				Out:       cmd.OutOrStdout(),
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cl.provision(ctx, email, password, name, tenantID)
		},
	}
	f := cmd.Flags()
	f.StringVar(&baseURL, "url", baseURL, "URL base del server (env TENANTPROV_URL)")
	f.StringVar(&token, "token", token, "Token admin (env TENANTPROV_TOKEN)")
	f.StringVar(&out, "out", out, "Formato de salida: json|text")
	f.DurationVar(&timeout, "timeout", timeout, "Timeout del request")
	f.StringVar(&email, "email", "", "Email del admin")
	f.StringVar(&password, "password", "", "Password inicial (o env TENANTPROV_PASSWORD)")
	f.StringVar(&name, "name", "", "Nombre visible")
	f.StringVar(&tenantID, "tenant", "", "ID del tenant")
	return cmd
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
