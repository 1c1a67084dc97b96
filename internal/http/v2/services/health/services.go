package health

// Services agrupa los services de health.
type Services struct {
	Health HealthService
}

// NewServices crea el aggregator.
func NewServices(d Deps) Services {
	return Services{Health: NewHealthService(d)}
}
