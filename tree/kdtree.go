package tree

import (
	"math"

	"github.com/hupe1980/kdego/metric"
)

// KDTree is a binary space partitioning tree with hyperrectangle bounds.
//
// Bounds are valid for metrics that are monotone in every coordinate gap,
// which holds for every Lp metric.
type KDTree struct {
	root       *KDNode
	points     [][]float64
	oldFromNew []int
	metric     metric.Metric
	kind       normKind
	dim        int
}

// KDNode is a node of a KDTree.
type KDNode struct {
	tree     *KDTree
	begin    int
	count    int
	left     *KDNode
	right    *KDNode
	lo, hi   []float64
	furthest float64
}

var _ Node[*KDNode] = (*KDNode)(nil)
var _ Tree[*KDNode] = (*KDTree)(nil)

// BuildKD builds a KD-tree over points. Points are split at the median of
// their widest dimension until at most leafSize remain in a node.
// The input slice is not modified; rows are shared, not copied.
func BuildKD(points [][]float64, leafSize int, m metric.Metric) (*KDTree, error) {
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
	t := &KDTree{
		points:     perm.points,
		oldFromNew: perm.oldFromNew,
		metric:     m,
		kind:       kindOf(m),
		dim:        dim,
	}
	t.root = t.build(perm, 0, len(points), leafSize)
	return t, nil
}

func (t *KDTree) build(perm *permutation, begin, end, leafSize int) *KDNode {
	n := &KDNode{
		tree:  t,
		begin: begin,
		count: end - begin,
		lo:    make([]float64, t.dim),
		hi:    make([]float64, t.dim),
	}
	for d := range t.dim {
		n.lo[d] = math.Inf(1)
		n.hi[d] = math.Inf(-1)
	}
	for _, p := range t.points[begin:end] {
		for d, v := range p {
			n.lo[d] = math.Min(n.lo[d], v)
			n.hi[d] = math.Max(n.hi[d], v)
		}
	}

	var g gapNorm
	g.reset(t.metric, t.kind, t.dim)
	widest, width := 0, -1.0
	for d := range t.dim {
		w := n.hi[d] - n.lo[d]
		g.add(d, w/2)
		if w > width {
			widest, width = d, w
		}
	}
	n.furthest = g.value()

	if n.count <= leafSize || width <= 0 {
		return n
	}

	perm.sortRange(begin, end, func(p []float64) float64 { return p[widest] })
	mid := begin + n.count/2
	n.left = t.build(perm, begin, mid, leafSize)
	n.right = t.build(perm, mid, end, leafSize)
	return n
}

// Root implements Tree.
func (t *KDTree) Root() *KDNode { return t.root }

// Points implements Tree.
func (t *KDTree) Points() [][]float64 { return t.points }

// OldFromNew implements Tree.
func (t *KDTree) OldFromNew() []int { return t.oldFromNew }

// Metric returns the metric the bounds are computed with.
func (t *KDTree) Metric() metric.Metric { return t.metric }

func (n *KDNode) NumDescendants() int { return n.count }

func (n *KDNode) Descendant(i int) int { return n.begin + i }

func (n *KDNode) Contains(index int) bool {
	return index >= n.begin && index < n.begin+n.count
}

func (n *KDNode) IsLeaf() bool { return n.left == nil }

func (n *KDNode) NumChildren() int {
	if n.left == nil {
		return 0
	}
	return 2
}

func (n *KDNode) Child(i int) *KDNode {
	if i == 0 {
		return n.left
	}
	return n.right
}

// Lo returns the lower corner of the bounding box.
func (n *KDNode) Lo() []float64 { return n.lo }

// Hi returns the upper corner of the bounding box.
func (n *KDNode) Hi() []float64 { return n.hi }

// PointRange implements Node.
func (n *KDNode) PointRange(p []float64) Range {
	t := n.tree
	var lo, hi gapNorm
	lo.reset(t.metric, t.kind, t.dim)
	hi.reset(t.metric, t.kind, t.dim)
	for d := range t.dim {
		below := n.lo[d] - p[d]
		above := p[d] - n.hi[d]
		lo.add(d, math.Max(0, math.Max(below, above)))
		hi.add(d, math.Max(math.Abs(p[d]-n.lo[d]), math.Abs(p[d]-n.hi[d])))
	}
	return Range{Lo: lo.value(), Hi: hi.value()}
}

// NodeRange implements Node.
func (n *KDNode) NodeRange(other *KDNode) Range {
	t := n.tree
	var lo, hi gapNorm
	lo.reset(t.metric, t.kind, t.dim)
	hi.reset(t.metric, t.kind, t.dim)
	for d := range t.dim {
		lo.add(d, math.Max(0, math.Max(n.lo[d]-other.hi[d], other.lo[d]-n.hi[d])))
		hi.add(d, math.Max(n.hi[d]-other.lo[d], other.hi[d]-n.lo[d]))
	}
	return Range{Lo: lo.value(), Hi: hi.value()}
}

// Center implements Node. Box centers are not data points.
func (n *KDNode) Center() (int, bool) { return -1, false }

// FurthestDescendantDistance implements Node: half the box diagonal.
func (n *KDNode) FurthestDescendantDistance() float64 { return n.furthest }
