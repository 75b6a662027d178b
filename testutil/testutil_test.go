package testutil

import (
	"math"
	"testing"

	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42).UniformPoints(10, 3)
	b := NewRNG(42).UniformPoints(10, 3)
	assert.Equal(t, a, b)

	rng := NewRNG(7)
	first := rng.Float64()
	rng.Reset()
	assert.Equal(t, first, rng.Float64())
	assert.Equal(t, int64(7), rng.Seed())
}

func TestUniformRangePoints(t *testing.T) {
	points := NewRNG(1).UniformRangePoints(100, 2, -3, 3)
	require.Len(t, points, 100)
	for _, p := range points {
		require.Len(t, p, 2)
		for _, v := range p {
			assert.GreaterOrEqual(t, v, -3.0)
			assert.Less(t, v, 3.0)
		}
	}
}

func TestClusteredPoints(t *testing.T) {
	points := NewRNG(3).ClusteredPoints(50, 4, 5, 0.01)
	require.Len(t, points, 50)
	// Points i and i+5 share a centroid.
	assert.Less(t, metric.Euclidean{}.Distance(points[0], points[5]), 0.2)
}

func TestBruteForce(t *testing.T) {
	reference := [][]float64{{0}, {1}, {2}}
	query := [][]float64{{0}}
	k := kernel.Func(func(d float64) float64 { return math.Exp(-d * d) })

	got := BruteForce(reference, query, metric.Euclidean{}, k, false)
	assert.InDelta(t, 1+math.Exp(-1)+math.Exp(-4), got[0], 1e-12)

	self := BruteForce(reference, reference, metric.Euclidean{}, k, true)
	assert.InDelta(t, math.Exp(-1)+math.Exp(-4), self[0], 1e-12)
	assert.InDelta(t, 2*math.Exp(-1), self[1], 1e-12)
}

func TestMaxViolation(t *testing.T) {
	exact := []float64{1, 2}
	assert.LessOrEqual(t, MaxViolation([]float64{1.05, 2}, exact, 0, 0.1), 0.0)
	assert.InDelta(t, 0.1, MaxViolation([]float64{1.2, 2}, exact, 0, 0.1), 1e-12)
	assert.LessOrEqual(t, MaxViolation([]float64{1.2, 2.3}, exact, 0.2, 0), 0.0)
}
