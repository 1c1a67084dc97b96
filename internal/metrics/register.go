// Package metrics define las métricas Prometheus del servicio.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// register registra c en reg. Si ya estaba registrado, retorna el existente
// para que dos wirings en el mismo proceso compartan series.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func registerer(reg prometheus.Registerer) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}
