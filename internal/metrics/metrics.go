package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hexlight/portal-notifier/internal/dispatcher"
	"github.com/hexlight/portal-notifier/internal/domain"
	"github.com/hexlight/portal-notifier/internal/resolver"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsSent       *prometheus.CounterVec
	NotificationsFailed     *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	RelayLatency            *prometheus.HistogramVec
	EndpointCacheHits       prometheus.Counter
	EndpointCacheMisses     prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of direct messages accepted by the relay.",
		}, []string{"kind"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of relay sends that errored.",
		}, []string{"kind"}),

		NotificationsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Total number of duplicates dropped inside the cooldown window.",
		}, []string{"kind"}),

		RelayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_send_seconds",
			Help:    "Latency of individual relay send calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),

		EndpointCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "endpoint_cache_hits_total",
			Help: "Resolutions served from the endpoint ID cached on the profile row.",
		}),
		EndpointCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "endpoint_cache_misses_total",
			Help: "Resolutions that required a relay email lookup.",
		}),
	}

	reg.MustRegister(
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationsSuppressed,
		m.RelayLatency,
		m.EndpointCacheHits,
		m.EndpointCacheMisses,
	)

	return m
}

// DispatcherHooks returns the metric callbacks expected by dispatcher.Hooks.
// Centralises the prometheus observation calls so the dispatcher stays
// metrics-agnostic.
func (m *Metrics) DispatcherHooks() dispatcher.Hooks {
	return dispatcher.Hooks{
		OnSent: func(kind domain.EventKind, latency time.Duration) {
			m.NotificationsSent.WithLabelValues(string(kind)).Inc()
			m.RelayLatency.WithLabelValues(string(kind)).Observe(latency.Seconds())
		},
		OnFailed: func(kind domain.EventKind) {
			m.NotificationsFailed.WithLabelValues(string(kind)).Inc()
		},
		OnSuppressed: func(kind domain.EventKind) {
			m.NotificationsSuppressed.WithLabelValues(string(kind)).Inc()
		},
	}
}

// ResolverHooks returns the metric callbacks expected by resolver.Hooks.
func (m *Metrics) ResolverHooks() resolver.Hooks {
	return resolver.Hooks{
		OnEndpointCacheHit:  m.EndpointCacheHits.Inc,
		OnEndpointCacheMiss: m.EndpointCacheMisses.Inc,
	}
}
