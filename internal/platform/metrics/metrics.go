package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the guardian client. Collectors
// are registered on the registry handed to New so tests can build as many
// instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	SessionBootstraps  *prometheus.CounterVec
	SessionCommits     *prometheus.CounterVec
	SessionClears      *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		SessionBootstraps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_session_bootstraps_total",
			Help: "Session bootstraps by resulting state",
		}, []string{"state"}),
		SessionCommits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_session_commits_total",
			Help: "Session commits by result",
		}, []string{"result"}),
		SessionClears: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_session_clears_total",
			Help: "Session clears by result",
		}, []string{"result"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_store_errors_total",
			Help: "Persistent store failures by operation",
		}, []string{"op"}),
		APIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guardian_api_request_duration_seconds",
			Help:    "Remote API request latency by endpoint and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "outcome"}),
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBootstrap records which state a bootstrap resolved to.
func (m *Metrics) ObserveBootstrap(state string) {
	m.SessionBootstraps.WithLabelValues(state).Inc()
}

// ObserveCommit records a commit result.
func (m *Metrics) ObserveCommit(err error) {
	m.SessionCommits.WithLabelValues(result(err)).Inc()
}

// ObserveClear records a clear result.
func (m *Metrics) ObserveClear(err error) {
	m.SessionClears.WithLabelValues(result(err)).Inc()
}

// IncrementStoreError records a failed store operation.
func (m *Metrics) IncrementStoreError(op string) {
	m.StoreErrors.WithLabelValues(op).Inc()
}

// ObserveAPIRequest records the duration of a remote API call.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveAPIRequest(endpoint string, start time.Time, err error) {
	m.APIRequestDuration.WithLabelValues(endpoint, result(err)).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
