package traversal

import "github.com/hupe1980/kdego/tree"

// DualTree is a depth-first dual-tree traverser. At every step it splits the
// larger of the two nodes; reference children are visited in score order and
// rescored before all but the first visit.
type DualTree[N tree.Node[N]] struct {
	rules   DualTreeRules[N]
	scratch [][]scored[N]
}

// NewDualTree returns a traverser driving rules.
func NewDualTree[N tree.Node[N]](rules DualTreeRules[N]) *DualTree[N] {
	return &DualTree[N]{rules: rules}
}

// Traverse resolves every pair drawn from queryRoot and referenceRoot.
func (t *DualTree[N]) Traverse(queryRoot, referenceRoot N) {
	if t.rules.ScoreNodes(queryRoot, referenceRoot) == Pruned {
		return
	}
	t.visit(queryRoot, referenceRoot, 0)
}

func (t *DualTree[N]) visit(qn, rn N, depth int) {
	qLeaf, rLeaf := qn.IsLeaf(), rn.IsLeaf()
	switch {
	case qLeaf && rLeaf:
		for i := range qn.NumDescendants() {
			q := qn.Descendant(i)
			for j := range rn.NumDescendants() {
				t.rules.BaseCase(q, rn.Descendant(j))
			}
		}
	case qLeaf || (!rLeaf && rn.NumDescendants() >= qn.NumDescendants()):
		t.splitReference(qn, rn, depth)
	default:
		for i := range qn.NumChildren() {
			qc := qn.Child(i)
			if t.rules.ScoreNodes(qc, rn) == Pruned {
				continue
			}
			t.visit(qc, rn, depth+1)
		}
	}
}

func (t *DualTree[N]) splitReference(qn, rn N, depth int) {
	for depth >= len(t.scratch) {
		t.scratch = append(t.scratch, nil)
	}
	children := t.scratch[depth][:0]
	for i := range rn.NumChildren() {
		c := rn.Child(i)
		children = append(children, scored[N]{node: c, score: t.rules.ScoreNodes(qn, c)})
	}
	sortScored(children)
	t.scratch[depth] = children

	for i, c := range children {
		score := c.score
		if i > 0 {
			score = t.rules.RescoreNodes(qn, c.node, score)
		}
		if score == Pruned {
			continue
		}
		t.visit(qn, c.node, depth+1)
	}
}
