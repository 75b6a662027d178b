package kde

// BaseCase adds the exact contribution of reference point ref to query q
// and returns the kernel value.
//
// It returns 0 without effect for a point paired with itself when self
// contributions are excluded, and for a repeat of the pair evaluated last.
func (r *Rules[N]) BaseCase(q, ref int) float64 {
	if r.excludeSelf && q == ref {
		return 0
	}
	if q == r.lastQuery && ref == r.lastReference {
		return 0
	}

	d, ok := r.info.CachedDistance(q, ref)
	if !ok {
		d = r.metric.Distance(r.query[q], r.reference[ref])
	}
	k := r.kernel.Evaluate(d)

	r.acc.densities[q] += k
	r.bank(q, r.absPer+r.cfg.RelError*k)

	r.lastQuery, r.lastReference = q, ref
	r.info.Remember(q, ref, d)
	r.baseCases++
	return k
}
