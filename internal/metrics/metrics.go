package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vibewise"

// Auth holds the auth counters and the registry they are exposed from.
// It implements core.AttemptRecorder.
type Auth struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	seeded   prometheus.Counter
}

// NewAuth creates and registers the auth collectors on a fresh registry.
func NewAuth() *Auth {
	reg := prometheus.NewRegistry()
	m := &Auth{
		registry: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Auth operations by method and outcome",
		}, []string{"method", "outcome"}),
		seeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_documents_seeded_total",
			Help:      "Users whose profile, settings and summary documents were created",
		}),
	}
	reg.MustRegister(
		m.attempts,
		m.seeded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Auth) ObserveAttempt(method string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.attempts.WithLabelValues(method, outcome).Inc()
}

func (m *Auth) ObserveSeeded() {
	m.seeded.Inc()
}

// Handler returns an http.Handler for Prometheus scraping
func (m *Auth) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
