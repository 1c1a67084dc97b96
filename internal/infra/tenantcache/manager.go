// Package tenantcache cachea las búsquedas de tenants del backend para no
// repetir el round-trip en cada provisioning.
package tenantcache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

// Config permite personalizar la instancia del Directory.
type Config struct {
	// TTL para tenants encontrados. Default 5m.
	TTL time.Duration
	// NegativeTTL para tenants inexistentes. Default 30s; negativo desactiva el cache negativo.
	NegativeTTL time.Duration
	// LookupTimeout acota el lookup compartido contra el backend. Default 5s.
	LookupTimeout time.Duration
}

// Directory implementa repository.TenantRepository sobre otro repo, con
// cache en memoria y deduplicación de lookups concurrentes.
type Directory struct {
	next        repository.TenantRepository
	cache       *gocache.Cache
	sf          singleflight.Group
	ttl         time.Duration
	negativeTTL time.Duration
	timeout     time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// notFound se guarda en cache para los lookups negativos.
type notFound struct{}

// New crea un Directory delante de next.
func New(next repository.TenantRepository, cfg Config) *Directory {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.NegativeTTL < 0 {
		cfg.NegativeTTL = 0
	} else if cfg.NegativeTTL == 0 {
		cfg.NegativeTTL = 30 * time.Second
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	return &Directory{
		next:        next,
		cache:       gocache.New(cfg.TTL, 2*cfg.TTL),
		ttl:         cfg.TTL,
		negativeTTL: cfg.NegativeTTL,
		timeout:     cfg.LookupTimeout,
	}
}

// GetByID retorna el tenant desde cache o desde el backend.
// Los errores que no son ErrNotFound nunca se cachean.
func (d *Directory) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	id = strings.TrimSpace(id)

	if v, ok := d.cache.Get(id); ok {
		d.hits.Add(1)
		if t, ok := v.(repository.Tenant); ok {
			return &t, nil
		}
		return nil, repository.ErrNotFound
	}
	d.misses.Add(1)

	// El lookup compartido no depende del ctx de quien lo inició: si ese
	// request se cancela, los demás siguen esperando el resultado.
	ch := d.sf.DoChan(id, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return d.lookup(lctx, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		t := res.Val.(repository.Tenant)
		return &t, nil
	}
}

func (d *Directory) lookup(ctx context.Context, id string) (repository.Tenant, error) {
	t, err := d.next.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) && d.negativeTTL > 0 {
			d.cache.Set(id, notFound{}, d.negativeTTL)
		}
		return repository.Tenant{}, err
	}
	d.cache.Set(id, *t, d.ttl)
	return *t, nil
}

// Invalidate borra la entrada de un tenant.
func (d *Directory) Invalidate(id string) {
	d.cache.Delete(strings.TrimSpace(id))
}

// Stats retorna hits/misses acumulados.
func (d *Directory) Stats() (hits, misses int64) {
	return d.hits.Load(), d.misses.Load()
}
