// Package testutil provides testing utilities for kdego.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets and computing exact
// kernel density sums to check approximations against.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 3)    // uniform [0, 1)
//	points = rng.ClusteredPoints(1000, 3, 5, 0.05)
//
// # Exact Densities (Ground Truth)
//
//	exact := testutil.BruteForce(reference, query, metric.Euclidean{}, kernel.Gaussian{H: 0.2}, false)
//
// # Error Verification
//
//	worst := testutil.MaxViolation(estimate, exact, relError, absError)
package testutil
