package tree

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/kdego/metric"
)

// DefaultLeafSize is the maximum number of points stored in a leaf when the
// caller does not choose one.
const DefaultLeafSize = 20

var (
	// ErrEmptyDataset is returned when building a tree over no points.
	ErrEmptyDataset = errors.New("tree: empty dataset")
)

// ErrDimensionMismatch indicates a point whose dimension differs from the first point.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("tree: point %d has dimension %d, expected %d", e.Index, e.Actual, e.Expected)
}

// ErrNonFinite indicates a point with a NaN or infinite coordinate.
type ErrNonFinite struct {
	Index int
}

func (e *ErrNonFinite) Error() string {
	return fmt.Sprintf("tree: point %d has non-finite coordinate", e.Index)
}

// Validate checks that points is non-empty, rectangular and finite.
// It returns the common dimension.
func Validate(points [][]float64) (int, error) {
	if len(points) == 0 {
		return 0, ErrEmptyDataset
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return 0, &ErrDimensionMismatch{Index: i, Expected: dim, Actual: len(p)}
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, &ErrNonFinite{Index: i}
			}
		}
	}
	return dim, nil
}

// permutation holds the reordered rows and their original positions while a
// tree is being built.
type permutation struct {
	points     [][]float64
	oldFromNew []int
}

func newPermutation(points [][]float64) *permutation {
	p := &permutation{
		points:     make([][]float64, len(points)),
		oldFromNew: make([]int, len(points)),
	}
	copy(p.points, points)
	for i := range p.oldFromNew {
		p.oldFromNew[i] = i
	}
	return p
}

func (p *permutation) swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
	p.oldFromNew[i], p.oldFromNew[j] = p.oldFromNew[j], p.oldFromNew[i]
}

// sortRange sorts positions [begin, end) by key ascending, carrying the
// original indices along. Keys are computed once per position.
func (p *permutation) sortRange(begin, end int, key func(point []float64) float64) {
	n := end - begin
	keys := make([]float64, n)
	for i := range n {
		keys[i] = key(p.points[begin+i])
	}
	// In-place heap sort; keys and rows move together.
	for i := n/2 - 1; i >= 0; i-- {
		p.siftDown(keys, begin, i, n)
	}
	for last := n - 1; last > 0; last-- {
		keys[0], keys[last] = keys[last], keys[0]
		p.swap(begin, begin+last)
		p.siftDown(keys, begin, 0, last)
	}
}

func (p *permutation) siftDown(keys []float64, begin, i, n int) {
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && keys[r] > keys[l] {
			best = r
		}
		if keys[best] <= keys[i] {
			return
		}
		keys[i], keys[best] = keys[best], keys[i]
		p.swap(begin+i, begin+best)
		i = best
	}
}

// normKind selects an inlined norm for the built-in metrics.
type normKind int

const (
	normGeneric normKind = iota
	normL2
	normL1
	normLInf
)

func kindOf(m metric.Metric) normKind {
	switch v := m.(type) {
	case metric.Euclidean:
		return normL2
	case metric.Manhattan:
		return normL1
	case metric.Chebyshev:
		return normLInf
	case metric.Minkowski:
		switch {
		case v.P == 1:
			return normL1
		case v.P == 2:
			return normL2
		case math.IsInf(v.P, 1):
			return normLInf
		}
	}
	return normGeneric
}

// gapNorm accumulates per-dimension gaps into a norm without allocating for
// the built-in metrics.
type gapNorm struct {
	kind    normKind
	m       metric.Metric
	acc     float64
	scratch []float64
}

func (g *gapNorm) reset(m metric.Metric, kind normKind, dim int) {
	g.kind = kind
	g.m = m
	g.acc = 0
	if kind == normGeneric {
		g.scratch = make([]float64, dim)
	}
}

func (g *gapNorm) add(d int, gap float64) {
	switch g.kind {
	case normL2:
		g.acc += gap * gap
	case normL1:
		g.acc += gap
	case normLInf:
		if gap > g.acc {
			g.acc = gap
		}
	default:
		g.scratch[d] = gap
	}
}

func (g *gapNorm) value() float64 {
	switch g.kind {
	case normL2:
		return math.Sqrt(g.acc)
	case normL1, normLInf:
		return g.acc
	default:
		return metric.Norm(g.m, g.scratch)
	}
}
