package traversal

import (
	"github.com/hupe1980/kdego/internal/queue"
	"github.com/hupe1980/kdego/tree"
)

// BestFirst is a single-tree traverser that always expands the queued node
// with the smallest score. Each node is rescored when popped.
type BestFirst[N tree.Node[N]] struct {
	rules SingleTreeRules[N]
	pq    *queue.PriorityQueue[N]
}

// NewBestFirst returns a best-first traverser driving rules.
func NewBestFirst[N tree.Node[N]](rules SingleTreeRules[N]) *BestFirst[N] {
	return &BestFirst[N]{rules: rules, pq: queue.NewMin[N](64)}
}

// Traverse resolves every reference point under root for query q.
func (t *BestFirst[N]) Traverse(q int, root N) {
	t.pq.Reset()
	if s := t.rules.Score(q, root); s != Pruned {
		t.pq.Push(root, s)
	}

	for {
		it, ok := t.pq.Pop()
		if !ok {
			return
		}
		if t.rules.Rescore(q, it.Value, it.Priority) == Pruned {
			continue
		}

		node := it.Value
		if node.IsLeaf() {
			for i := range node.NumDescendants() {
				t.rules.BaseCase(q, node.Descendant(i))
			}
			continue
		}
		for i := range node.NumChildren() {
			c := node.Child(i)
			if s := t.rules.Score(q, c); s != Pruned {
				t.pq.Push(c, s)
			}
		}
	}
}

// TraverseRange runs Traverse for the queries in [begin, end).
func (t *BestFirst[N]) TraverseRange(begin, end int, root N) {
	for q := begin; q < end; q++ {
		t.Traverse(q, root)
	}
}
