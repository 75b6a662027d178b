package tree

import (
	"math"

	"github.com/hupe1980/kdego/metric"
)

// BallTree is a binary tree of balls centered on data points.
//
// Every node's first point is its pivot (the ball center), and the left child
// keeps its parent's pivot. Scoring a parent and then its left child therefore
// asks for the same query-to-pivot distance twice, which rules can serve from
// TraversalInfo. Works with any metric satisfying the triangle inequality.
type BallTree struct {
	root       *BallNode
	points     [][]float64
	oldFromNew []int
	metric     metric.Metric
}

// BallNode is a node of a BallTree.
type BallNode struct {
	tree   *BallTree
	begin  int
	count  int
	left   *BallNode
	right  *BallNode
	radius float64
}

var _ Node[*BallNode] = (*BallNode)(nil)
var _ Tree[*BallNode] = (*BallTree)(nil)

// BuildBall builds a pivot ball tree over points.
// The input slice is not modified; rows are shared, not copied.
func BuildBall(points [][]float64, leafSize int, m metric.Metric) (*BallTree, error) {
	dim, err := Validate(points)
	if err != nil {
		return nil, err
	}
	if leafSize < 1 {
		leafSize = DefaultLeafSize
	}
	if m == nil {
		m = metric.Euclidean{}
	}

	perm := newPermutation(points)
	t := &BallTree{
		points:     perm.points,
		oldFromNew: perm.oldFromNew,
		metric:     m,
	}

	// Root pivot: the point nearest the mean keeps the root ball tight.
	mean := make([]float64, dim)
	for _, p := range points {
		for d, v := range p {
			mean[d] += v
		}
	}
	for d := range mean {
		mean[d] /= float64(len(points))
	}
	best, bestDist := 0, math.Inf(1)
	for i, p := range perm.points {
		if d := m.Distance(p, mean); d < bestDist {
			best, bestDist = i, d
		}
	}
	perm.swap(0, best)

	t.root = t.build(perm, 0, len(points), leafSize)
	return t, nil
}

// build expects the pivot of [begin, end) at position begin.
func (t *BallTree) build(perm *permutation, begin, end, leafSize int) *BallNode {
	n := &BallNode{tree: t, begin: begin, count: end - begin}
	pivot := t.points[begin]

	far, farDist := begin, 0.0
	for i := begin + 1; i < end; i++ {
		if d := t.metric.Distance(pivot, t.points[i]); d > farDist {
			far, farDist = i, d
		}
	}
	n.radius = farDist

	if n.count <= leafSize || farDist == 0 {
		return n
	}

	farPoint := t.points[far]
	perm.sortRange(begin+1, end, func(p []float64) float64 {
		return t.metric.Distance(p, pivot) - t.metric.Distance(p, farPoint)
	})
	// The far point has the largest key and sorted last; move it to the
	// front of the right half so it becomes that child's pivot.
	mid := begin + n.count/2
	perm.swap(mid, end-1)

	n.left = t.build(perm, begin, mid, leafSize)
	n.right = t.build(perm, mid, end, leafSize)
	return n
}

// Root implements Tree.
func (t *BallTree) Root() *BallNode { return t.root }

// Points implements Tree.
func (t *BallTree) Points() [][]float64 { return t.points }

// OldFromNew implements Tree.
func (t *BallTree) OldFromNew() []int { return t.oldFromNew }

// Metric returns the metric the bounds are computed with.
func (t *BallTree) Metric() metric.Metric { return t.metric }

func (n *BallNode) NumDescendants() int { return n.count }

func (n *BallNode) Descendant(i int) int { return n.begin + i }

func (n *BallNode) Contains(index int) bool {
	return index >= n.begin && index < n.begin+n.count
}

func (n *BallNode) IsLeaf() bool { return n.left == nil }

func (n *BallNode) NumChildren() int {
	if n.left == nil {
		return 0
	}
	return 2
}

func (n *BallNode) Child(i int) *BallNode {
	if i == 0 {
		return n.left
	}
	return n.right
}

// PointRange implements Node.
func (n *BallNode) PointRange(p []float64) Range {
	d := n.tree.metric.Distance(p, n.tree.points[n.begin])
	return Range{Lo: math.Max(0, d-n.radius), Hi: d + n.radius}
}

// NodeRange implements Node.
func (n *BallNode) NodeRange(other *BallNode) Range {
	d := n.tree.metric.Distance(n.tree.points[n.begin], other.tree.points[other.begin])
	r := n.radius + other.radius
	return Range{Lo: math.Max(0, d-r), Hi: d + r}
}

// Center implements Node.
func (n *BallNode) Center() (int, bool) { return n.begin, true }

// FurthestDescendantDistance implements Node.
func (n *BallNode) FurthestDescendantDistance() float64 { return n.radius }
