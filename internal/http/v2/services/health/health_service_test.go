package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ok(context.Context) error { return nil }

func TestCheck_Ready(t *testing.T) {
	res := NewHealthService(Deps{Driver: "supabase", BackendCheck: ok, RedisCheck: ok}).Check(context.Background())
	assert.Equal(t, "ready", res.Status)
	assert.Equal(t, "supabase", res.Driver)
	assert.Equal(t, "ok", res.Components["backend"].Status)
	assert.Equal(t, "ok", res.Components["redis"].Status)
}

func TestCheck_RedisDisabled(t *testing.T) {
	res := NewHealthService(Deps{BackendCheck: ok}).Check(context.Background())
	assert.Equal(t, "ready", res.Status)
	assert.Equal(t, "disabled", res.Components["redis"].Status)
}

func TestCheck_Degraded(t *testing.T) {
	res := NewHealthService(Deps{
		BackendCheck: ok,
		RedisCheck:   func(context.Context) error { return errors.New("connection refused") },
	}).Check(context.Background())
	assert.Equal(t, "degraded", res.Status)
	assert.Contains(t, res.Components["redis"].Message, "connection refused")
}

func TestCheck_BackendDown(t *testing.T) {
	res := NewHealthService(Deps{
		BackendCheck: func(context.Context) error { return errors.New("503") },
		RedisCheck:   ok,
	}).Check(context.Background())
	assert.Equal(t, "unavailable", res.Status)
}

func TestCheck_Timeout(t *testing.T) {
	res := NewHealthService(Deps{
		Timeout: 10 * time.Millisecond,
		BackendCheck: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}).Check(context.Background())
	assert.Equal(t, "unavailable", res.Status)
	assert.Contains(t, res.Components["backend"].Message, "deadline exceeded")
}

func TestCheck_NoBackendConfigured(t *testing.T) {
	res := NewHealthService(Deps{}).Check(context.Background())
	assert.Equal(t, "unavailable", res.Status)
	assert.Equal(t, "disabled", res.Components["backend"].Status)
}
