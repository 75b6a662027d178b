package traversal

import "github.com/hupe1980/kdego/tree"

// BaseCaseRules evaluates single query/reference pairs.
type BaseCaseRules interface {
	BaseCase(queryIndex, referenceIndex int) float64
}

// Naive pairs every query with every reference point under root without
// scoring a node. It is the exact baseline the pruning traversers are
// measured against.
type Naive[N tree.Node[N]] struct {
	rules BaseCaseRules
}

// NewNaive returns a traverser driving rules.
func NewNaive[N tree.Node[N]](rules BaseCaseRules) *Naive[N] {
	return &Naive[N]{rules: rules}
}

// TraverseRange evaluates the queries in [begin, end) against root.
func (t *Naive[N]) TraverseRange(begin, end int, root N) {
	n := root.NumDescendants()
	for q := begin; q < end; q++ {
		for i := range n {
			t.rules.BaseCase(q, root.Descendant(i))
		}
	}
}
