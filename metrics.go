package kdego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// promcollector provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after a reference tree is built.
	// points is the reference set size, err is nil if successful.
	RecordBuild(points int, duration time.Duration, err error)

	// RecordEvaluate is called after each evaluation. stats is the zero
	// value when err is not nil.
	RecordEvaluate(mode Mode, queries int, stats EvaluateStats, duration time.Duration, err error)

	// RecordPersist is called after each save or load. op is one of
	// "save_result", "load_result", "save_dataset", "load_dataset".
	RecordPersist(op string, bytes int64, duration time.Duration, err error)
}

// EvaluateStats are the traversal counters of one evaluation.
type EvaluateStats struct {
	BaseCases           uint64
	Scores              uint64
	Prunes              uint64
	MonteCarloEstimates uint64
	Approximated        uint64
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)                         {}
func (NoopMetricsCollector) RecordEvaluate(Mode, int, EvaluateStats, time.Duration, error) {}
func (NoopMetricsCollector) RecordPersist(string, int64, time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	BuildPoints        atomic.Int64
	EvaluateCount      atomic.Int64
	EvaluateErrors     atomic.Int64
	EvaluateQueries    atomic.Int64
	EvaluateTotalNanos atomic.Int64
	BaseCases          atomic.Uint64
	Prunes             atomic.Uint64
	MonteCarlo         atomic.Uint64
	PersistCount       atomic.Int64
	PersistErrors      atomic.Int64
	PersistBytes       atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points int, _ time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildPoints.Add(int64(points))
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(_ Mode, queries int, stats EvaluateStats, duration time.Duration, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvaluateErrors.Add(1)
		return
	}
	b.EvaluateQueries.Add(int64(queries))
	b.BaseCases.Add(stats.BaseCases)
	b.Prunes.Add(stats.Prunes)
	b.MonteCarlo.Add(stats.MonteCarloEstimates)
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(_ string, bytes int64, _ time.Duration, err error) {
	b.PersistCount.Add(1)
	if err != nil {
		b.PersistErrors.Add(1)
		return
	}
	b.PersistBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildPoints:      b.BuildPoints.Load(),
		EvaluateCount:    b.EvaluateCount.Load(),
		EvaluateErrors:   b.EvaluateErrors.Load(),
		EvaluateQueries:  b.EvaluateQueries.Load(),
		EvaluateAvgNanos: b.getAvgEvaluateNanos(),
		BaseCases:        b.BaseCases.Load(),
		Prunes:           b.Prunes.Load(),
		MonteCarlo:       b.MonteCarlo.Load(),
		PersistCount:     b.PersistCount.Load(),
		PersistErrors:    b.PersistErrors.Load(),
		PersistBytes:     b.PersistBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgEvaluateNanos() int64 {
	count := b.EvaluateCount.Load()
	if count == 0 {
		return 0
	}
	return b.EvaluateTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	BuildPoints      int64
	EvaluateCount    int64
	EvaluateErrors   int64
	EvaluateQueries  int64
	EvaluateAvgNanos int64
	BaseCases        uint64
	Prunes           uint64
	MonteCarlo       uint64
	PersistCount     int64
	PersistErrors    int64
	PersistBytes     int64
}
