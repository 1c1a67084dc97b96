package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP agrupa las métricas de requests entrantes.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
}

func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	reg = registerer(reg)
	h := &HTTP{}
	var err error

	h.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	h.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"}))
	if err != nil {
		return nil, err
	}

	h.inflight, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método",
	}, []string{"method"}))
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Begin marca un request en vuelo. La ruta recién se conoce después del
// routing, por eso va en la función de cierre.
func (h *HTTP) Begin(method string) func(route string, status int) {
	start := time.Now()
	g := h.inflight.WithLabelValues(method)
	g.Inc()
	return func(route string, status int) {
		g.Dec()
		h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		h.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
