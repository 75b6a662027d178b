package traversal

import "github.com/hupe1980/kdego/tree"

// SingleTree is a depth-first single-tree traverser. Children are visited in
// score order and every child after the first is rescored just before its
// visit, since its siblings may have banked enough budget to drop it.
type SingleTree[N tree.Node[N]] struct {
	rules   SingleTreeRules[N]
	scratch [][]scored[N]
}

// NewSingleTree returns a traverser driving rules.
func NewSingleTree[N tree.Node[N]](rules SingleTreeRules[N]) *SingleTree[N] {
	return &SingleTree[N]{rules: rules}
}

// Traverse resolves every reference point under root for query q.
func (t *SingleTree[N]) Traverse(q int, root N) {
	if t.rules.Score(q, root) == Pruned {
		return
	}
	t.visit(q, root, 0)
}

// TraverseRange runs Traverse for the queries in [begin, end).
func (t *SingleTree[N]) TraverseRange(begin, end int, root N) {
	for q := begin; q < end; q++ {
		t.Traverse(q, root)
	}
}

func (t *SingleTree[N]) visit(q int, node N, depth int) {
	if node.IsLeaf() {
		for i := range node.NumDescendants() {
			t.rules.BaseCase(q, node.Descendant(i))
		}
		return
	}

	for depth >= len(t.scratch) {
		t.scratch = append(t.scratch, nil)
	}
	children := t.scratch[depth][:0]
	for i := range node.NumChildren() {
		c := node.Child(i)
		children = append(children, scored[N]{node: c, score: t.rules.Score(q, c)})
	}
	sortScored(children)
	t.scratch[depth] = children

	for i, c := range children {
		score := c.score
		if i > 0 {
			score = t.rules.Rescore(q, c.node, score)
		}
		if score == Pruned {
			continue
		}
		t.visit(q, c.node, depth+1)
	}
}
