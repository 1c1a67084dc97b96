// Package health contiene los DTOs de health check.
package health

import "time"

// HealthResponse es la respuesta de GET /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"` // ready | degraded | unavailable
	Version    string                  `json:"version,omitempty"`
	Commit     string                  `json:"commit,omitempty"`
	Driver     string                  `json:"driver,omitempty"`
	Components map[string]HealthStatus `json:"components"`
	Timestamp  time.Time               `json:"timestamp"`
}

// HealthStatus es el estado de un componente.
type HealthStatus struct {
	Status    string `json:"status"` // ok | error
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}
