// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "judo"

type Metrics struct {
	registry *prometheus.Registry

	BoutResults     *prometheus.CounterVec
	RosterCommits   prometheus.Counter
	BalanceRuns     *prometheus.CounterVec
	PoolsMoved      prometheus.Counter
	PoolsByStatus   *prometheus.GaugeVec
	TableLoad       *prometheus.GaugeVec
	RefreshDuration prometheus.Histogram
	RefreshFailures prometheus.Counter
}

// New registers every collector on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BoutResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bout_results_total",
			Help:      "Bout results submitted, by resulting action.",
		}, []string{"action"}),
		RosterCommits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_commits_total",
			Help:      "Pool compositions committed.",
		}),
		BalanceRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_runs_total",
			Help:      "Table balancer runs, by mode.",
		}, []string{"mode"}),
		PoolsMoved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pools_moved_total",
			Help:      "Pools whose table or order changed through a balancer run.",
		}),
		PoolsByStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pools",
			Help:      "Pools of the active categories, by status.",
		}, []string{"status"}),
		TableLoad: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_load_bouts",
			Help:      "Bouts assigned per table.",
		}, []string{"table"}),
		RefreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time to load a snapshot and publish the board.",
			Buckets:   prometheus.DefBuckets,
		}),
		RefreshFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_failures_total",
			Help:      "Refresh cycles that failed.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTables replaces the table load gauges.
func (m *Metrics) ObserveTables(loads map[int]int) {
	m.TableLoad.Reset()
	for table, load := range loads {
		m.TableLoad.WithLabelValues(strconv.Itoa(table)).Set(float64(load))
	}
}

// ObserveStatuses replaces the pool status gauges.
func (m *Metrics) ObserveStatuses(counts map[string]int) {
	m.PoolsByStatus.Reset()
	for status, n := range counts {
		m.PoolsByStatus.WithLabelValues(status).Set(float64(n))
	}
}
