// Package metrics exposes Prometheus counters for webhook deliveries, deploy
// triggers and upstream polls. A nil *Registry is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pushdeploy"

// Registry wraps a dedicated prometheus.Registry with the service's collectors
type Registry struct {
	*prometheus.Registry

	webhookDeliveries *prometheus.CounterVec
	deployTriggers    *prometheus.CounterVec
	upstreamPolls     *prometheus.CounterVec
}

// NewRegistry creates a registry with all collectors registered
func NewRegistry() *Registry {
	r := &Registry{
		Registry: prometheus.NewRegistry(),

		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Number of webhook deliveries by event and outcome.",
		}, []string{"event", "outcome"}),

		deployTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deploy_triggers_total",
			Help:      "Number of deploy trigger attempts by source and outcome.",
		}, []string{"source", "outcome"}),

		upstreamPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_polls_total",
			Help:      "Number of upstream commit polls by result.",
		}, []string{"result"}),
	}

	r.MustRegister(
		r.webhookDeliveries,
		r.deployTriggers,
		r.upstreamPolls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{
		Registry:          r.Registry,
		EnableOpenMetrics: true,
	})
}

func (r *Registry) ObserveDelivery(event, outcome string) {
	if r == nil {
		return
	}
	r.webhookDeliveries.WithLabelValues(event, outcome).Inc()
}

func (r *Registry) ObserveDeploy(source, outcome string) {
	if r == nil {
		return
	}
	r.deployTriggers.WithLabelValues(source, outcome).Inc()
}

func (r *Registry) ObservePoll(result string) {
	if r == nil {
		return
	}
	r.upstreamPolls.WithLabelValues(result).Inc()
}
