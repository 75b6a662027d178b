package traversal

import (
	"math"

	"github.com/hupe1980/kdego/tree"
)

// Pruned is the score that tells a driver to skip a node.
const Pruned = math.MaxFloat64

// SingleTreeRules scores reference nodes for one query point at a time.
type SingleTreeRules[N tree.Node[N]] interface {
	BaseCase(queryIndex, referenceIndex int) float64
	Score(queryIndex int, referenceNode N) float64
	Rescore(queryIndex int, referenceNode N, oldScore float64) float64
}

// DualTreeRules scores query node / reference node pairs.
type DualTreeRules[N tree.Node[N]] interface {
	BaseCase(queryIndex, referenceIndex int) float64
	ScoreNodes(queryNode, referenceNode N) float64
	RescoreNodes(queryNode, referenceNode N, oldScore float64) float64
}

type scored[N any] struct {
	node  N
	score float64
}

// sortScored orders by ascending score. Child lists are short.
func sortScored[N any](s []scored[N]) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].score < s[j-1].score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
