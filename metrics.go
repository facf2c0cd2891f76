package gostreams

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "gostreams"
	metricsSubsystem = "refcount"
)

// Metrics records the connection lifecycle of RefCount sources in Prometheus metrics.
// All metrics are labeled with the name of the source, see WithName.
// A nil *Metrics records nothing.
type Metrics struct {
	// Connects counts calls to Connect on the wrapped source.
	Connects *prometheus.CounterVec

	// Disconnects counts disposed connections.
	Disconnects *prometheus.CounterVec

	// DisconnectsScheduled counts delayed disconnects that were scheduled.
	DisconnectsScheduled *prometheus.CounterVec

	// DisconnectsCanceled counts delayed disconnects canceled by a new subscriber.
	DisconnectsCanceled *prometheus.CounterVec

	// Subscribers is the current number of subscribers.
	Subscribers *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	labels := []string{"source"}

	m := &Metrics{
		Connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "connects_total",
			Help:      "Number of connections made to shared sources.",
		}, labels),

		Disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "disconnects_total",
			Help:      "Number of connections to shared sources that were disposed.",
		}, labels),

		DisconnectsScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "disconnects_scheduled_total",
			Help:      "Number of delayed disconnects scheduled after the last subscriber left.",
		}, labels),

		DisconnectsCanceled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "disconnects_canceled_total",
			Help:      "Number of delayed disconnects canceled by a new subscriber.",
		}, labels),

		Subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "subscribers",
			Help:      "Current number of subscribers of shared sources.",
		}, labels),
	}

	collectors := []prometheus.Collector{
		m.Connects,
		m.Disconnects,
		m.DisconnectsScheduled,
		m.DisconnectsCanceled,
		m.Subscribers,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) connected(name string) {
	if m == nil {
		return
	}

	m.Connects.WithLabelValues(name).Inc()
}

func (m *Metrics) disconnected(name string) {
	if m == nil {
		return
	}

	m.Disconnects.WithLabelValues(name).Inc()
}

func (m *Metrics) disconnectScheduled(name string) {
	if m == nil {
		return
	}

	m.DisconnectsScheduled.WithLabelValues(name).Inc()
}

func (m *Metrics) disconnectCanceled(name string) {
	if m == nil {
		return
	}

	m.DisconnectsCanceled.WithLabelValues(name).Inc()
}

func (m *Metrics) observeSubscribers(name string, count int) {
	if m == nil {
		return
	}

	m.Subscribers.WithLabelValues(name).Set(float64(count))
}
