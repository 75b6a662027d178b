package tree

// Range is a closed interval of distances.
type Range struct {
	Lo float64
	Hi float64
}

// Node is the capability a spatial tree node exposes to traversal rules.
//
// N is the concrete node type itself, so that node-to-node bounds and child
// access stay statically typed. Indices returned by Descendant and accepted by
// Contains refer to the tree's reordered point set (see Tree.Points).
type Node[N any] interface {
	// NumDescendants returns the number of points held in the subtree.
	NumDescendants() int
	// Descendant returns the point index of the i-th descendant.
	Descendant(i int) int
	// Contains reports whether the point index belongs to the subtree.
	Contains(index int) bool

	IsLeaf() bool
	NumChildren() int
	Child(i int) N

	// PointRange bounds the distance between p and any point of the subtree.
	PointRange(p []float64) Range
	// NodeRange bounds the distance between any pair of points drawn from
	// this subtree and other.
	NodeRange(other N) Range

	// Center returns the index of a subtree point located at the center of
	// the node's bounding ball, if the node has one.
	Center() (index int, ok bool)
	// FurthestDescendantDistance bounds the distance from the node's center
	// to any descendant.
	FurthestDescendantDistance() float64
}

// Tree is a built spatial index over a reordered point set.
type Tree[N Node[N]] interface {
	Root() N
	// Points returns the points in tree order.
	Points() [][]float64
	// OldFromNew maps a tree-order index to the index in the input set.
	OldFromNew() []int
}

// TraversalInfo carries what the last scoring step learned so that the next
// Score on an overlapping pair can reuse it instead of recomputing.
//
// LastQueryIndex/LastReferenceIndex name the point pair whose distance is
// cached in LastBaseCase; -1 means nothing is cached.
type TraversalInfo[N any] struct {
	LastQueryNode      N
	LastReferenceNode  N
	LastScore          float64
	LastQueryIndex     int
	LastReferenceIndex int
	LastBaseCase       float64
}

// NewTraversalInfo returns an empty TraversalInfo.
func NewTraversalInfo[N any]() TraversalInfo[N] {
	return TraversalInfo[N]{
		LastQueryIndex:     -1,
		LastReferenceIndex: -1,
	}
}

// CachedDistance returns the cached distance for the pair, if present.
func (t *TraversalInfo[N]) CachedDistance(queryIndex, referenceIndex int) (float64, bool) {
	if t.LastQueryIndex == queryIndex && t.LastReferenceIndex == referenceIndex && queryIndex >= 0 {
		return t.LastBaseCase, true
	}
	return 0, false
}

// Remember caches the distance of a point pair.
func (t *TraversalInfo[N]) Remember(queryIndex, referenceIndex int, distance float64) {
	t.LastQueryIndex = queryIndex
	t.LastReferenceIndex = referenceIndex
	t.LastBaseCase = distance
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	MaxLeaf  int
}

// Describe walks the subtree rooted at root.
func Describe[N Node[N]](root N) Stats {
	var s Stats
	var walk func(n N, depth int)
	walk = func(n N, depth int) {
		s.Nodes++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if n.IsLeaf() {
			s.Leaves++
			if c := n.NumDescendants(); c > s.MaxLeaf {
				s.MaxLeaf = c
			}
			return
		}
		for i := range n.NumChildren() {
			walk(n.Child(i), depth+1)
		}
	}
	walk(root, 0)
	return s
}
