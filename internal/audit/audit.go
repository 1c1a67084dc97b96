// Package audit emite eventos de auditoría del provisioning como logs
// estructurados bajo el logger "audit".
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// Event identifica el tipo de evento.
type Event string

const (
	EventProvisioned     Event = "tenant_admin.provisioned"
	EventProvisionFailed Event = "tenant_admin.provision_failed"
	EventCompensated     Event = "tenant_admin.compensated"
)

// Log escribe el evento usando el logger del contexto (con request_id, etc).
func Log(ctx context.Context, event Event, fields ...zap.Field) {
	fields = append(fields, zap.String("event", string(event)))
	logger.From(ctx).Named("audit").Info(string(event), fields...)
}
