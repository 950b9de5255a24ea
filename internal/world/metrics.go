package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus-метрики менеджера чанков и генератора.
// Нулевой указатель допустим: все методы становятся no-op.
type Metrics struct {
	loaded     prometheus.Gauge
	created    prometheus.Counter
	unloaded   prometheus.Counter
	generated  prometheus.Counter
	genSeconds prometheus.Histogram
	overflows  prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, метрики не регистрируются (удобно для тестов).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "world",
			Name:      "chunks_loaded",
			Help:      "Количество чанков в памяти.",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "chunks_created_total",
			Help:      "Чанков, созданных лениво при записи.",
		}),
		unloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "chunks_unloaded_total",
			Help:      "Чанков, выгруженных по расстоянию.",
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "chunks_generated_total",
			Help:      "Чанков, построенных генератором ландшафта.",
		}),
		genSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "world",
			Name:      "chunk_generation_seconds",
			Help:      "Время генерации одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "world",
			Name:      "palette_overflows_total",
			Help:      "Записей, отклонённых из-за переполнения палитры.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.loaded, m.created, m.unloaded, m.generated, m.genSeconds, m.overflows)
	}
	return m
}

func (m *Metrics) setLoaded(n int) {
	if m == nil {
		return
	}
	m.loaded.Set(float64(n))
}

func (m *Metrics) chunkCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Metrics) chunksUnloaded(n int) {
	if m == nil || n == 0 {
		return
	}
	m.unloaded.Add(float64(n))
}

func (m *Metrics) chunkGenerated(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generated.Inc()
	m.genSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) paletteOverflow() {
	if m == nil {
		return
	}
	m.overflows.Inc()
}
