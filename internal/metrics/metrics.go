// Package metrics exposes the prometheus collectors Resolver, Publisher,
// and wsrelay.Pool record against. Registration happens once, against
// prometheus.DefaultRegisterer, mirroring the teacher repo's gowaku
// integration.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ResolveLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "locator",
		Subsystem: "resolver",
		Name:      "resolve_latency_seconds",
		Help:      "Time spent in Resolve/ResolveLatest, from call entry to return, cache hits included.",
		Buckets:   prometheus.DefBuckets,
	})

	ResolveOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locator",
		Subsystem: "resolver",
		Name:      "resolve_outcomes_total",
		Help:      "Resolve/ResolveLatest outcomes by result.",
	}, []string{"result"})

	PublishOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locator",
		Subsystem: "publisher",
		Name:      "publish_outcomes_total",
		Help:      "Per-relay publish outcomes.",
	}, []string{"relay", "ok"})

	RelayQueryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locator",
		Subsystem: "pool",
		Name:      "relay_query_errors_total",
		Help:      "Per-relay query errors observed by the default pool.",
	}, []string{"relay"})
)

func init() {
	prometheus.MustRegister(ResolveLatency, ResolveOutcomes, PublishOutcomes, RelayQueryErrors)
}
