package kde

import "math"

// Score decides the fate of reference node for query point q.
//
// It returns Prune when the node's contribution has been added to the
// accumulator, either from the kernel bounds at the node's minimum and
// maximum distance or from a Monte Carlo sample. Otherwise it returns the
// minimum distance, so that drivers ordering by score visit nearer nodes first.
func (r *Rules[N]) Score(q int, node N) float64 {
	r.scores++
	score := r.score(q, node)
	r.info.LastReferenceNode = node
	r.info.LastScore = score
	return score
}

func (r *Rules[N]) score(q int, node N) float64 {
	count := r.count(q, node)
	if count == 0 {
		r.prunes++
		return Prune
	}

	lo, hi := r.pointRange(q, node)
	maxK := r.kernel.Evaluate(lo)
	minK := r.kernel.Evaluate(hi)
	halfWidth := (maxK - minK) / 2
	tol := r.absPer + r.cfg.RelError*minK
	c := float64(count)

	if c*(halfWidth-tol) <= r.acc.slack[q] {
		r.acc.densities[q] += c * (maxK + minK) / 2
		r.bank(q, c*(tol-halfWidth))
		if halfWidth > 0 {
			r.approximated.Add(uint32(q))
		}
		r.prunes++
		return Prune
	}

	if r.sampleable(node) && r.monteCarlo(q, node, count) {
		return Prune
	}

	if math.IsNaN(lo) {
		return 0
	}
	return lo
}

// Rescore re-checks a node scored earlier for query q. The node is dropped
// when the kernel value at oldScore (the node's minimum distance) times its
// size fits into the absolute tolerance it banks plus the query's slack.
// It never changes a density.
func (r *Rules[N]) Rescore(q int, node N, oldScore float64) float64 {
	if IsPruned(oldScore) {
		return oldScore
	}
	count := r.count(q, node)
	if count == 0 {
		return Prune
	}

	maxK := r.kernel.Evaluate(oldScore)
	c := float64(count)
	if c*(maxK-r.absPer) <= r.acc.slack[q] {
		r.bank(q, c*(r.absPer-maxK))
		if maxK > 0 {
			r.approximated.Add(uint32(q))
		}
		r.prunes++
		return Prune
	}
	return oldScore
}

// ScoreNodes is Score for a query node against a reference node. A prune
// adds the estimate to every query of qn.
func (r *Rules[N]) ScoreNodes(qn, rn N) float64 {
	r.scores++
	score := r.scoreNodes(qn, rn)
	r.info.LastQueryNode = qn
	r.info.LastReferenceNode = rn
	r.info.LastScore = score
	return score
}

func (r *Rules[N]) scoreNodes(qn, rn N) float64 {
	if qn.NumDescendants() == 0 || r.selfOnly(qn, rn) {
		r.prunes++
		return Prune
	}

	lo, hi := r.nodeRange(qn, rn)
	maxK := r.kernel.Evaluate(lo)
	minK := r.kernel.Evaluate(hi)
	halfWidth := (maxK - minK) / 2
	tol := r.absPer + r.cfg.RelError*minK

	if r.covers(qn, rn, halfWidth-tol) {
		mid := (maxK + minK) / 2
		for i := range qn.NumDescendants() {
			q := qn.Descendant(i)
			c := float64(r.count(q, rn))
			r.acc.densities[q] += c * mid
			r.bank(q, c*(tol-halfWidth))
			if c*halfWidth > 0 {
				r.approximated.Add(uint32(q))
			}
		}
		r.prunes++
		return Prune
	}

	if r.sampleable(rn) && r.monteCarloNodes(qn, rn) {
		return Prune
	}

	if math.IsNaN(lo) {
		return 0
	}
	return lo
}

// RescoreNodes is Rescore for a query node against a reference node.
func (r *Rules[N]) RescoreNodes(qn, rn N, oldScore float64) float64 {
	if IsPruned(oldScore) {
		return oldScore
	}
	if qn.NumDescendants() == 0 || r.selfOnly(qn, rn) {
		return Prune
	}

	maxK := r.kernel.Evaluate(oldScore)
	deficit := maxK - r.absPer
	if !r.covers(qn, rn, deficit) {
		return oldScore
	}
	for i := range qn.NumDescendants() {
		q := qn.Descendant(i)
		c := float64(r.count(q, rn))
		r.bank(q, -c*deficit)
		if c*maxK > 0 {
			r.approximated.Add(uint32(q))
		}
	}
	r.prunes++
	return Prune
}

// selfOnly reports whether no reference point of rn contributes to any
// query of qn.
func (r *Rules[N]) selfOnly(qn, rn N) bool {
	switch rn.NumDescendants() {
	case 0:
		return true
	case 1:
		return r.excludeSelf && qn.NumDescendants() == 1 && qn.Descendant(0) == rn.Descendant(0)
	}
	return false
}

// pointRange bounds the distance from query q to node, reusing the cached
// distance to the node's center when there is one.
func (r *Rules[N]) pointRange(q int, node N) (float64, float64) {
	center, ok := node.Center()
	if !ok {
		b := node.PointRange(r.query[q])
		return b.Lo, b.Hi
	}
	d, hit := r.info.CachedDistance(q, center)
	if !hit {
		d = r.metric.Distance(r.query[q], r.reference[center])
		r.info.Remember(q, center, d)
	}
	radius := node.FurthestDescendantDistance()
	return math.Max(0, d-radius), d + radius
}

// nodeRange bounds the distance between any points of qn and rn.
func (r *Rules[N]) nodeRange(qn, rn N) (float64, float64) {
	qc, qok := qn.Center()
	rc, rok := rn.Center()
	if !qok || !rok {
		b := qn.NodeRange(rn)
		return b.Lo, b.Hi
	}
	d, hit := r.info.CachedDistance(qc, rc)
	if !hit {
		d = r.metric.Distance(r.query[qc], r.reference[rc])
		r.info.Remember(qc, rc, d)
	}
	radius := qn.FurthestDescendantDistance() + rn.FurthestDescendantDistance()
	return math.Max(0, d-radius), d + radius
}
