package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Methods are nil-safe
// so components can run without metrics in tests.
type Metrics struct {
	DraftsCreated   prometheus.Counter
	DraftsActive    prometheus.Gauge
	DraftsEvicted   prometheus.Counter
	Submissions     *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DraftsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "portal_registration_drafts_created_total",
			Help: "Registration drafts opened",
		}),
		DraftsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "portal_registration_drafts_active",
			Help: "Registration drafts currently held in memory",
		}),
		DraftsEvicted: f.NewCounter(prometheus.CounterOpts{
			Name: "portal_registration_drafts_evicted_total",
			Help: "Registration drafts dropped after sitting idle past the TTL",
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_registration_submissions_total",
			Help: "Registration submit attempts by outcome",
		}, []string{"outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_login_attempts_total",
			Help: "Login attempts by outcome and role",
		}, []string{"outcome", "role"}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_backend_request_duration_seconds",
			Help:    "Latency of calls to the marketplace backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
}

func (m *Metrics) IncrementDraftsCreated() {
	if m == nil {
		return
	}
	m.DraftsCreated.Inc()
	m.DraftsActive.Inc()
}

// DraftsRemoved lowers the active gauge; evicted marks TTL removals.
func (m *Metrics) DraftsRemoved(n int, evicted bool) {
	if m == nil || n == 0 {
		return
	}
	m.DraftsActive.Sub(float64(n))
	if evicted {
		m.DraftsEvicted.Add(float64(n))
	}
}

func (m *Metrics) IncrementSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementLogin(outcome, role string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome, role).Inc()
}

func (m *Metrics) ObserveBackend(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}
