package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/perturb"
)

const namespace = "jitterball"

var (
	_ perturb.Observer     = (*Metrics)(nil)
	_ bus.EventBusObserver = (*Metrics)(nil)
)

// EntityCounter is the slice of the scene the metrics need.
type EntityCounter interface {
	Len() int
}

// Metrics owns a dedicated registry so tests and multiple hosts in one
// process do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	ticks          prometheus.Counter
	skipped        prometheus.Counter
	nudges         prometheus.Counter
	speed          prometheus.Gauge
	nudgeMagnitude prometheus.Histogram

	busDeliveries *prometheus.CounterVec
	busFailures   *prometheus.CounterVec
}

// New creates the collectors. includeRuntime also registers the Go and
// process collectors.
func New(includeRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Perturbation scheduler ticks.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because the target body was unavailable.",
		}),
		nudges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nudges_total",
			Help:      "Random velocity nudges applied.",
		}),
		speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "body_speed_mps",
			Help:      "Linear speed of the nudged body right after the last nudge.",
		}),
		nudgeMagnitude: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nudge_magnitude_mps",
			Help:      "Magnitude of applied velocity deltas.",
			Buckets:   prometheus.LinearBuckets(0.005, 0.005, 11),
		}),
		busDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_deliveries_total",
			Help:      "Event handler invocations on the in-process bus.",
		}, []string{"event"}),
		busFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_failed_publishes_total",
			Help:      "Publishes where at least one handler returned an error.",
		}, []string{"event"}),
	}

	m.registry.MustRegister(m.ticks, m.skipped, m.nudges, m.speed, m.nudgeMagnitude,
		m.busDeliveries, m.busFailures)
	if includeRuntime {
		m.registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}
	return m
}

// WatchScene exports the number of entities in the scene.
func (m *Metrics) WatchScene(s EntityCounter) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scene_entities",
		Help:      "Entities currently registered in the scene.",
	}, func() float64 { return float64(s.Len()) }))
}

// WatchBus counts deliveries and failures on b.
func (m *Metrics) WatchBus(b bus.EventBus) {
	b.AddObserver(m)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry,
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}))
}

func (m *Metrics) TickObserved() { m.ticks.Inc() }

func (m *Metrics) TickSkipped() { m.skipped.Inc() }

func (m *Metrics) NudgeApplied(n perturb.Nudge) {
	m.nudges.Inc()
	m.speed.Set(n.After.Len())
	m.nudgeMagnitude.Observe(n.Delta.Len())
}

func (m *Metrics) OnDelivered(eventType string, handlers int, err error, _ time.Duration) {
	m.busDeliveries.WithLabelValues(eventType).Add(float64(handlers))
	if err != nil {
		m.busFailures.WithLabelValues(eventType).Inc()
	}
}
