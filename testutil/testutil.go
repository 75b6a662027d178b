package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/metric"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates random points with coordinates in [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dim int) [][]float64 {
	return r.UniformRangePoints(num, dim, 0, 1)
}

// UniformRangePoints generates random points with coordinates in [minVal, maxVal).
func (r *RNG) UniformRangePoints(num, dim int, minVal, maxVal float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)
	span := maxVal - minVal

	for i := range num {
		p := data[i*dim : (i+1)*dim]
		for j := range p {
			p[j] = minVal + r.rand.Float64()*span
		}
		points[i] = p
	}

	return points
}

// GaussianPoints generates points from a standard normal distribution.
func (r *RNG) GaussianPoints(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim]
		for j := range p {
			p[j] = r.rand.NormFloat64()
		}
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points clustered around random centroids in
// the unit cube. Clustered data is where tree pruning pays off.
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float64) [][]float64 {
	centroids := r.UniformPoints(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		centroid := centroids[i%clusters]
		p := data[i*dim : (i+1)*dim]
		for j := range dim {
			p[j] = centroid[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points
}

// BruteForce computes exact kernel sums for every query point.
// With excludeSelf, query i skips reference i (monochromatic evaluation).
func BruteForce(reference, query [][]float64, m metric.Metric, k kernel.Kernel, excludeSelf bool) []float64 {
	out := make([]float64, len(query))
	for i, q := range query {
		var sum float64
		for j, p := range reference {
			if excludeSelf && i == j {
				continue
			}
			sum += k.Evaluate(m.Distance(q, p))
		}
		out[i] = sum
	}
	return out
}

// MaxViolation returns the largest amount by which any estimate leaves the
// band exact ± (absError + relError·exact). Zero or negative means every
// estimate is inside.
func MaxViolation(estimate, exact []float64, relError, absError float64) float64 {
	worst := math.Inf(-1)
	for i := range exact {
		v := math.Abs(estimate[i]-exact[i]) - (absError + relError*exact[i])
		if v > worst {
			worst = v
		}
	}
	return worst
}
