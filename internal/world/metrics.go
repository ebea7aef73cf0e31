package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics инкапсулирует Prometheus-метрики стриминга чанков.
type Metrics struct {
	chunksLoaded    prometheus.Counter
	chunksUnloaded  prometheus.Counter
	chunksCancelled prometheus.Counter
	generation      prometheus.Histogram
	pending         prometheus.Gauge
	active          prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// При reg == nil метрики работают, но никуда не экспортируются.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "chunks_generated_total",
			Help:      "Общее число сгенерированных чанков.",
		}),
		chunksUnloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "chunks_unloaded_total",
			Help:      "Чанков, выгруженных стримером.",
		}),
		chunksCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "chunks_generation_cancelled_total",
			Help:      "Отложенных генераций, отменённых из-за выгрузки чанка.",
		}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "world",
			Name:      "chunk_generation_seconds",
			Help:      "Длительность генерации одного чанка.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "world",
			Name:      "chunks_pending",
			Help:      "Чанков в очереди отложенной генерации.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "world",
			Name:      "chunks_active",
			Help:      "Чанков в карте загруженных (включая генерирующиеся).",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.chunksLoaded, m.chunksUnloaded, m.chunksCancelled, m.generation, m.pending, m.active)
	}
	return m
}
