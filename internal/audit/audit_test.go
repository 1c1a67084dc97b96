package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))

	Log(ctx, EventProvisioned, logger.TenantID("t1"), logger.UserID("u1"))

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "audit", e.LoggerName)
	assert.Equal(t, "tenant_admin.provisioned", e.Message)
	fields := e.ContextMap()
	assert.Equal(t, "t1", fields["tenant_id"])
	assert.Equal(t, "tenant_admin.provisioned", fields["event"])
}
