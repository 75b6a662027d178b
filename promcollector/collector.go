// Package promcollector exports kdego operational metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/kdego"
)

const namespace = "kdego"

// Collector implements kdego.MetricsCollector with Prometheus vectors.
type Collector struct {
	BuildsTotal       *prometheus.CounterVec
	BuildPoints       prometheus.Histogram
	BuildDuration     prometheus.Histogram
	EvaluationsTotal  *prometheus.CounterVec
	EvaluateDuration  *prometheus.HistogramVec
	QueriesTotal      *prometheus.CounterVec
	BaseCasesTotal    *prometheus.CounterVec
	PrunesTotal       *prometheus.CounterVec
	MonteCarloTotal   *prometheus.CounterVec
	ApproximatedRatio *prometheus.HistogramVec
	PersistTotal      *prometheus.CounterVec
	PersistBytes      *prometheus.CounterVec
	PersistDuration   *prometheus.HistogramVec
}

var _ kdego.MetricsCollector = (*Collector)(nil)

// New registers the kdego metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		BuildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tree_builds_total",
			Help:      "Reference tree builds by result",
		}, []string{"result"}),
		BuildPoints: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tree_build_points",
			Help:      "Reference points per tree build",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6), // 100 to 10M
		}),
		BuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tree_build_duration_seconds",
			Help:      "Reference tree build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		EvaluationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Density evaluations by mode and result",
		}, []string{"mode", "result"}),
		EvaluateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluate_duration_seconds",
			Help:      "Evaluation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"mode"}),
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Query points evaluated",
		}, []string{"mode"}),
		BaseCasesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "base_cases_total",
			Help:      "Point pairs evaluated exactly",
		}, []string{"mode"}),
		PrunesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prunes_total",
			Help:      "Nodes resolved without descending",
		}, []string{"mode"}),
		MonteCarloTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monte_carlo_estimates_total",
			Help:      "Node contributions estimated from samples",
		}, []string{"mode"}),
		ApproximatedRatio: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "approximated_ratio",
			Help:      "Fraction of queries per evaluation whose density is approximate",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"mode"}),
		PersistTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_operations_total",
			Help:      "Result and dataset saves and loads by operation and result",
		}, []string{"op", "result"}),
		PersistBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_bytes_total",
			Help:      "Bytes written or read by persistence operations",
		}, []string{"op"}),
		PersistDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Persistence operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBuild implements kdego.MetricsCollector.
func (c *Collector) RecordBuild(points int, duration time.Duration, err error) {
	c.BuildsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	c.BuildPoints.Observe(float64(points))
	c.BuildDuration.Observe(duration.Seconds())
}

// RecordEvaluate implements kdego.MetricsCollector.
func (c *Collector) RecordEvaluate(mode kdego.Mode, queries int, stats kdego.EvaluateStats, duration time.Duration, err error) {
	m := mode.String()
	c.EvaluationsTotal.WithLabelValues(m, result(err)).Inc()
	c.EvaluateDuration.WithLabelValues(m).Observe(duration.Seconds())
	if err != nil {
		return
	}
	c.QueriesTotal.WithLabelValues(m).Add(float64(queries))
	c.BaseCasesTotal.WithLabelValues(m).Add(float64(stats.BaseCases))
	c.PrunesTotal.WithLabelValues(m).Add(float64(stats.Prunes))
	c.MonteCarloTotal.WithLabelValues(m).Add(float64(stats.MonteCarloEstimates))
	if queries > 0 {
		c.ApproximatedRatio.WithLabelValues(m).Observe(float64(stats.Approximated) / float64(queries))
	}
}

// RecordPersist implements kdego.MetricsCollector.
func (c *Collector) RecordPersist(op string, bytes int64, duration time.Duration, err error) {
	c.PersistTotal.WithLabelValues(op, result(err)).Inc()
	c.PersistDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err == nil {
		c.PersistBytes.WithLabelValues(op).Add(float64(bytes))
	}
}
