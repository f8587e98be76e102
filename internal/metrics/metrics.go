package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "palletbook"

// Mutation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	txRetries        prometheus.Counter
	reconcileRuns    *prometheus.CounterVec
	reconcileRepairs prometheus.Counter
	reconcileBuckets prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Work record mutations by operation and outcome",
	}, []string{"op", "outcome"})
	m.mutationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_duration_seconds",
		Help:      "Time spent in a work record mutation, including retries",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	m.txRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_retries_total",
		Help:      "Store transactions re-run after a serialization conflict",
	})
	m.reconcileRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Reconciler sweeps by status",
	}, []string{"status"})
	m.reconcileRepairs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_repairs_total",
		Help:      "Monthly summaries rewritten by the reconciler",
	})
	m.reconcileBuckets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconcile_buckets",
		Help:      "Buckets checked by the last reconciler sweep",
	})

	m.registry.MustRegister(
		m.mutations,
		m.mutationDuration,
		m.txRetries,
		m.reconcileRuns,
		m.reconcileRepairs,
		m.reconcileBuckets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMutation records one finished Create/Update/Delete/Rebuild.
func (m *Metrics) ObserveMutation(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
	m.mutationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// TxRetry counts one transaction re-run. Its signature matches the store's OnRetry hook.
func (m *Metrics) TxRetry(int, error) {
	if m == nil {
		return
	}
	m.txRetries.Inc()
}

// ObserveReconcile records one reconciler sweep.
func (m *Metrics) ObserveReconcile(buckets, repairs int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reconcileRuns.WithLabelValues(status).Inc()
	m.reconcileBuckets.Set(float64(buckets))
	m.reconcileRepairs.Add(float64(repairs))
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
