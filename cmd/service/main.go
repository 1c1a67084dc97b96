package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/tenantprov/internal/config"
	v2server "github.com/dropDatabas3/tenantprov/internal/http/v2/server"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"

	// Registra los adapters de backend via init()
	_ "github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/all"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warn: .env: %v", err)
	}

	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "tenantprov"})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.MigrateOnStart {
		if _, err := v2server.Migrate(ctx, cfg); err != nil {
			lg.Fatal("migrations failed", logger.Err(err))
		}
	}

	app, err := v2server.Build(ctx, cfg)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	if err := v2server.Serve(ctx, cfg, app.Handler); err != nil {
		lg.Error("server stopped", logger.Err(err))
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
