package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Provisioning implementa el Recorder del service de provisioning.
type Provisioning struct {
	requests      *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	compensations *prometheus.CounterVec
}

// NewProvisioning registra las métricas en reg (DefaultRegisterer si es nil).
func NewProvisioning(reg prometheus.Registerer) (*Provisioning, error) {
	reg = registerer(reg)
	p := &Provisioning{}
	var err error

	p.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioning_requests_total",
		Help: "Provisionings por resultado (success o kind de error)",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	p.stepDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provisioning_step_duration_seconds",
		Help:    "Latencia de cada llamada al backend",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"step"}))
	if err != nil {
		return nil, err
	}

	p.compensations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioning_compensations_total",
		Help: "Borrados compensatorios por paso y resultado (ok|failed)",
	}, []string{"step", "result"}))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provisioning) ObserveStep(step string, d time.Duration) {
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *Provisioning) Result(result string) {
	p.requests.WithLabelValues(result).Inc()
}

func (p *Provisioning) Compensation(step, result string) {
	p.compensations.WithLabelValues(step, result).Inc()
}
