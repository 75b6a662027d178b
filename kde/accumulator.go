package kde

// Accumulator holds the per-query output of a traversal: the density
// estimates plus the error slack and Monte Carlo failure budget each query
// has left.
//
// Values are only ever added to during a traversal. Rules sharing an
// Accumulator must own disjoint query indices.
type Accumulator struct {
	densities     []float64
	slack         []float64
	failure       []float64
	failureBudget float64
}

// NewAccumulator returns an accumulator for n queries. failureBudget is the
// probability each query may spend on Monte Carlo estimates, normally
// 1 - SuccessProbability.
func NewAccumulator(n int, failureBudget float64) *Accumulator {
	a := &Accumulator{
		densities:     make([]float64, n),
		slack:         make([]float64, n),
		failure:       make([]float64, n),
		failureBudget: failureBudget,
	}
	a.Reset()
	return a
}

// Densities returns the density vector. The slice is owned by the
// accumulator; copy it before the next Reset.
func (a *Accumulator) Densities() []float64 { return a.densities }

// Len returns the number of queries.
func (a *Accumulator) Len() int { return len(a.densities) }

// Reset zeroes densities and slack and restores every failure budget.
func (a *Accumulator) Reset() {
	for i := range a.densities {
		a.densities[i] = 0
		a.slack[i] = 0
		a.failure[i] = a.failureBudget
	}
}
