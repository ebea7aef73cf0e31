package physics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics – счётчики движка физики
type Metrics struct {
	steps      prometheus.Counter
	collisions prometheus.Counter
	skipped    prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg (если не nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "steps_total",
			Help:      "Выполненные шаги симуляции.",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "collisions_resolved_total",
			Help:      "Разрешённые столкновения с блоками.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "collisions_skipped_total",
			Help:      "Столкновения, снятые предыдущими сдвигами в том же шаге.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.steps, m.collisions, m.skipped)
	}
	return m
}
