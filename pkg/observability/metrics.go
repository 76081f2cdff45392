package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records kernel activity as Prometheus series.
type Metrics struct {
	registry *prometheus.Registry

	decisions *prometheus.CounterVec
	commands  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	suspended prometheus.Counter
	resumed   prometheus.Counter
	evicted   *prometheus.CounterVec
	version   prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gambit_decisions_applied_total",
				Help: "Total number of decisions applied, by kind",
			},
			[]string{"kind"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gambit_commands_total",
				Help: "Total number of handled commands and resumes, by type and status",
			},
			[]string{"type", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gambit_command_duration_seconds",
				Help:    "Duration of Handle and Resume calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		suspended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gambit_sessions_suspended_total",
			Help: "Total number of sessions that suspended for external input",
		}),
		resumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gambit_sessions_resumed_total",
			Help: "Total number of resumed sessions",
		}),
		evicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gambit_sessions_evicted_total",
				Help: "Total number of evicted sessions, by reason",
			},
			[]string{"reason"},
		),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gambit_state_version",
			Help: "Version of the authoritative state",
		}),
	}
	m.registry.MustRegister(m.decisions, m.commands, m.duration, m.suspended, m.resumed, m.evicted, m.version)
	return m
}

// Registry exposes the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDecisionApplied: func(_ context.Context, e *domain.DecisionEvent) {
			m.decisions.WithLabelValues(string(e.Kind)).Inc()
			m.version.Set(float64(e.Version))
		},
		OnCommandHandled: func(_ context.Context, e *domain.CommandEvent) {
			m.commands.WithLabelValues(string(e.CommandType), string(e.Status)).Inc()
			m.duration.WithLabelValues(string(e.CommandType)).Observe(e.Duration.Seconds())
		},
		OnSessionSuspended: func(context.Context, *domain.SessionEvent) {
			m.suspended.Inc()
		},
		OnSessionResumed: func(context.Context, *domain.SessionEvent) {
			m.resumed.Inc()
		},
		OnSessionEvicted: func(_ context.Context, e *domain.SessionEvent) {
			m.evicted.WithLabelValues(e.Reason).Inc()
		},
	}
}
