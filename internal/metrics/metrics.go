package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ssl_monitor"

// Probe results.
const (
	ResultOnline    = "online"
	ResultOffline   = "offline"
	ResultTimeout   = "timeout"
	ResultCached    = "cached"
	ResultSent      = "sent"
	ResultFailed    = "failed"
	ResultAbandoned = "abandoned"
)

// Metrics holds collectors exposed by the monitor.
type Metrics struct {
	gatherer prometheus.Gatherer

	Probes              *prometheus.CounterVec
	ProbeDuration       prometheus.Histogram
	RefreshDuration     prometheus.Histogram
	Domains             prometheus.Gauge
	Alerts              *prometheus.CounterVec
	PersistenceFailures prometheus.Counter
}

// New creates collectors and registers them in a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		gatherer: reg,
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Certificate lookups by result",
		}, []string{"result"}),
		ProbeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of TLS certificate probes",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Duration of refresh cycles",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		Domains: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domains_monitored",
			Help:      "Number of monitored domains",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Expiry alerts by delivery result",
		}, []string{"result"}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed attempts to persist the domain table",
		}),
	}

	reg.MustRegister(
		m.Probes,
		m.ProbeDuration,
		m.RefreshDuration,
		m.Domains,
		m.Alerts,
		m.PersistenceFailures,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
