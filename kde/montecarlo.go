package kde

import "math"

// zCache memoizes the last normal quantile; alpha only changes after a
// committed estimate.
type zCache struct {
	alpha float64
	z     float64
}

// quantile returns the two-sided standard normal critical value for failure
// probability alpha.
func (c *zCache) quantile(alpha float64) float64 {
	if alpha != c.alpha || c.z == 0 {
		c.alpha = alpha
		c.z = math.Sqrt2 * math.Erfinv(1-alpha)
	}
	return c.z
}

func (r *Rules[N]) sampleable(node N) bool {
	mc := r.cfg.MonteCarlo
	return mc.Enabled && r.cfg.RelError > 0 &&
		float64(node.NumDescendants()) >= mc.EntryCoef*float64(mc.InitialSampleSize)
}

// monteCarlo estimates the contribution of node to query q from a random
// sample and commits it when the sample certifies the relative error bound.
func (r *Rules[N]) monteCarlo(q int, node N, count int) bool {
	alpha := r.acc.failure[q] / 2
	if !(alpha > 0) {
		return false
	}
	mean, ok := r.sampleMean(q, node, count, r.z.quantile(alpha))
	if !ok {
		return false
	}

	c := float64(count)
	r.acc.densities[q] += c * mean
	r.acc.failure[q] -= alpha
	r.bank(q, c*r.absPer)
	r.approximated.Add(uint32(q))
	r.mcEstimates++
	return true
}

// monteCarloNodes samples rn for every query of qn and commits only if every
// query's sample succeeds.
func (r *Rules[N]) monteCarloNodes(qn, rn N) bool {
	alpha := math.Inf(1)
	for i := range qn.NumDescendants() {
		alpha = math.Min(alpha, r.acc.failure[qn.Descendant(i)])
	}
	alpha /= 2
	if !(alpha > 0) || math.IsInf(alpha, 1) {
		return false
	}
	z := r.z.quantile(alpha)

	r.sampledMeans = r.sampledMeans[:0]
	for i := range qn.NumDescendants() {
		q := qn.Descendant(i)
		count := r.count(q, rn)
		if count == 0 {
			r.sampledMeans = append(r.sampledMeans, 0)
			continue
		}
		mean, ok := r.sampleMean(q, rn, count, z)
		if !ok {
			return false
		}
		r.sampledMeans = append(r.sampledMeans, mean)
	}

	for i, mean := range r.sampledMeans {
		q := qn.Descendant(i)
		c := float64(r.count(q, rn))
		r.acc.densities[q] += c * mean
		r.acc.failure[q] -= alpha
		r.bank(q, c*r.absPer)
		r.approximated.Add(uint32(q))
	}
	r.mcEstimates += uint64(len(r.sampledMeans))
	return true
}

// sampleMean draws kernel values between query q and random points of node
// until the sample size certifies mean within RelError at critical value z.
// It gives up when the required size reaches BreakCoef*count or the mean is
// not positive.
func (r *Rules[N]) sampleMean(q int, node N, count int, z float64) (float64, bool) {
	mc := r.cfg.MonteCarlo
	rel := r.cfg.RelError
	limit := mc.BreakCoef * float64(count)
	need := mc.InitialSampleSize
	n := node.NumDescendants()
	r.samples = r.samples[:0]

	for {
		if float64(need) >= limit {
			return 0, false
		}
		for len(r.samples) < need {
			ref := node.Descendant(r.rng.IntN(n))
			if r.excludeSelf && ref == q {
				continue
			}
			r.samples = append(r.samples, r.kernel.Evaluate(r.metric.Distance(r.query[q], r.reference[ref])))
		}

		mean, sd := meanStdDev(r.samples)
		if !(mean > 0) {
			return 0, false
		}
		ratio := z * sd * (1 + rel) / (rel * mean)
		required := math.Ceil(ratio * ratio)
		if required <= float64(len(r.samples)) {
			return mean, true
		}
		if required >= limit {
			return 0, false
		}
		need = int(required)
	}
}

// meanStdDev returns the mean and the sample standard deviation.
func meanStdDev(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}
