// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	dto "github.com/dropDatabas3/tenantprov/internal/http/v2/dto/health"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Check es una verificación de un componente.
type Check func(ctx context.Context) error

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	// Driver es el nombre del backend activo (solo informativo).
	Driver string
	// BackendCheck es crítico: si falla el estado es "unavailable".
	BackendCheck Check
	// RedisCheck es opcional; si falla el estado es "degraded".
	RedisCheck Check
	// Timeout por check. Default 3s.
	Timeout time.Duration
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 3 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Driver:     s.deps.Driver,
		Version:    os.Getenv("SERVICE_VERSION"),
		Commit:     os.Getenv("SERVICE_COMMIT"),
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}

	var mu sync.Mutex
	set := func(name string, st dto.HealthStatus) {
		mu.Lock()
		response.Components[name] = st
		mu.Unlock()
	}

	// Los checks nunca retornan error al group: el resultado va al map.
	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, check Check) {
		if check == nil {
			set(name, dto.HealthStatus{Status: "disabled"})
			return
		}
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.deps.Timeout)
			defer cancel()
			start := time.Now()
			err := check(cctx)
			st := dto.HealthStatus{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				st.Status = "error"
				st.Message = fmt.Sprintf("unavailable: %v", err)
				log.Warn("health component failed", logger.String("component", name), logger.Err(err))
			}
			set(name, st)
			return nil
		})
	}
	run("backend", s.deps.BackendCheck)
	run("redis", s.deps.RedisCheck)
	_ = g.Wait()

	switch {
	case response.Components["backend"].Status != "ok":
		response.Status = "unavailable"
	case response.Components["redis"].Status == "error":
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}
