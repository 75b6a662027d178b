package benchmark_test

import (
	"testing"

	"github.com/hupe1980/kdego"
	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

// Standard dimensions used across benchmarks for consistency.
const (
	dimSmall  = 2  // Plots and maps
	dimMedium = 8  // Typical feature vectors
	dimLarge  = 32 // Trees degrade toward brute force
)

// Standard dataset sizes.
const (
	sizeSmall  = 10_000  // Quick iteration
	sizeMedium = 50_000  // Default CI
	sizeLarge  = 100_000 // Production-scale
)

// Seed for deterministic benchmarks - enables reproducible comparisons.
const benchSeed = 42

// ============================================================================
// Benchmark Helpers
// ============================================================================

// MakeReference returns clustered reference points, the shape trees prune best on.
func MakeReference(n, dim int) [][]float64 {
	return testutil.NewRNG(benchSeed).ClusteredPoints(n, dim, 16, 0.05)
}

// MakeQueries returns uniform query points from a seed distinct from the reference.
func MakeQueries(n, dim int) [][]float64 {
	return testutil.NewRNG(benchSeed+1).UniformPoints(n, dim)
}

// NewBenchEstimator builds an estimator with a fixed bandwidth and tolerance.
func NewBenchEstimator(b *testing.B, reference [][]float64, opts ...kdego.Option) *kdego.Estimator {
	b.Helper()
	defaultOpts := []kdego.Option{
		kdego.WithKernel(kernel.Gaussian{H: 0.1}),
		kdego.WithRelError(0.05),
		kdego.WithWorkers(1), // Comparable across machines
	}
	est, err := kdego.New(reference, append(defaultOpts, opts...)...)
	if err != nil {
		b.Fatalf("failed to build estimator: %v", err)
	}
	return est
}

// reportStats attaches traversal counters of the last evaluation.
func reportStats(b *testing.B, res *kdego.Result, queries, refs int) {
	b.ReportMetric(float64(res.BaseCases)/float64(queries*refs), "basecase_ratio")
	b.ReportMetric(float64(res.Prunes), "prunes")
}
