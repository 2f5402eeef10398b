// Package metrics holds the prometheus collectors for the integration
// layer. Collectors are created once per Metrics value and registered on
// their own registry, so tests can construct isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	WebhookEvents        *prometheus.CounterVec
	WebhookRejected      *prometheus.CounterVec
	OAuthConnects        *prometheus.CounterVec
	SyncPolls            prometheus.Counter
	TriggerPublishErrors prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Verified inbound webhook events by topic.",
		}, []string{"topic"}),
		WebhookRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_rejected_total",
			Help: "Inbound webhook requests rejected before dispatch.",
		}, []string{"reason"}),
		OAuthConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_connections_total",
			Help: "Completed OAuth connections by provider.",
		}, []string{"provider"}),
		SyncPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_polls_total",
			Help: "Sync-status reconciliation requests served.",
		}),
		TriggerPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trigger_publish_errors_total",
			Help: "Downstream trigger publishes that failed.",
		}),
	}

	registry.MustRegister(
		m.WebhookEvents,
		m.WebhookRejected,
		m.OAuthConnects,
		m.SyncPolls,
		m.TriggerPublishErrors,
	)

	return m
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
