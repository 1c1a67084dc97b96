package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dropDatabas3/tenantprov/internal/config"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
	store "github.com/dropDatabas3/tenantprov/internal/store/v2"
	"github.com/dropDatabas3/tenantprov/internal/store/v2/adapters/pg"
	migrations "github.com/dropDatabas3/tenantprov/migrations/postgres"
)

// Serve atiende en cfg.Server.Addr hasta que ctx se cancela y luego hace
// un shutdown ordenado acotado por ShutdownTimeout.
func Serve(ctx context.Context, cfg *config.Config, h http.Handler) error {
	log := logger.From(ctx).With(logger.Component("server"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Migrate aplica el schema embebido sobre storage.dsn.
func Migrate(ctx context.Context, cfg *config.Config) (*store.MigrationResult, error) {
	if cfg.Storage.DSN == "" {
		return nil, errors.New("migrate: storage.dsn is empty")
	}
	pool, err := pg.Connect(ctx, cfg.Storage.DSN, 2, 1)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer pool.Close()

	res, err := store.NewMigrator(migrations.SchemaFS, migrations.SchemaDir).Run(ctx, pool)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("migrations applied",
		logger.Int("applied", len(res.Applied)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Duration(res.Duration),
	)
	return res, nil
}
