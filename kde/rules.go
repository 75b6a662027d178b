package kde

import (
	"math"
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/metric"
	"github.com/hupe1980/kdego/tree"
)

// Prune is the score returned when a node needs no further visits.
const Prune = math.MaxFloat64

// IsPruned reports whether score is the Prune sentinel.
func IsPruned(score float64) bool { return score == Prune }

// Rules decides, for each node or node pair a traversal meets, whether the
// contribution can be resolved without descending.
//
// Point indices passed to the hooks refer to the reference and query slices
// given to NewRules, which must be in the order of the trees being traversed.
type Rules[N tree.Node[N]] struct {
	reference [][]float64
	query     [][]float64
	acc       *Accumulator
	metric    metric.Metric
	kernel    kernel.Kernel
	cfg       Config

	excludeSelf bool
	// absPer is the absolute tolerance banked per resolved reference point.
	absPer float64

	bandwidth    float64
	hasBandwidth bool

	rng *rand.Rand
	z   zCache

	lastQuery     int
	lastReference int
	info          tree.TraversalInfo[N]

	// maxSlack bounds the slack of every query this Rules has written.
	maxSlack float64

	baseCases    uint64
	scores       uint64
	prunes       uint64
	mcEstimates  uint64
	approximated *roaring.Bitmap
	samples      []float64
	sampledMeans []float64
}

// NewRules binds reference and query sets, an accumulator and the distance
// and kernel capabilities. In same-set mode query and reference must be the
// same slice. The kernel's bandwidth is resolved here once; Monte Carlo
// sampling requires one.
func NewRules[N tree.Node[N]](reference, query [][]float64, acc *Accumulator, m metric.Metric, k kernel.Kernel, cfg Config) (*Rules[N], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(reference) == 0 {
		return nil, invalid("reference set", "empty")
	}
	if k == nil {
		return nil, invalid("kernel", "nil")
	}
	if acc == nil {
		return nil, invalid("accumulator", "nil")
	}
	if acc.Len() < len(query) {
		return nil, invalid("accumulator", "holds %d queries, need %d", acc.Len(), len(query))
	}
	if cfg.SameSet && len(reference) != len(query) {
		return nil, invalid("same set", "reference has %d points, query %d", len(reference), len(query))
	}
	if m == nil {
		m = metric.Euclidean{}
	}

	h, ok := k.Bandwidth()
	if cfg.MonteCarlo.Enabled && !ok {
		return nil, ErrNoBandwidth
	}

	r := &Rules[N]{
		reference:     reference,
		query:         query,
		acc:           acc,
		metric:        m,
		kernel:        k,
		cfg:           cfg,
		excludeSelf:   cfg.SameSet && !cfg.IncludeSelf,
		bandwidth:     h,
		hasBandwidth:  ok,
		rng:           rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		lastQuery:     -1,
		lastReference: -1,
		info:          tree.NewTraversalInfo[N](),
		approximated:  roaring.New(),
	}

	effective := len(reference)
	if r.excludeSelf {
		effective--
	}
	if effective > 0 {
		r.absPer = cfg.AbsError / float64(effective)
	}
	return r, nil
}

// EvaluateKernel returns the kernel value at the distance between a and b.
func (r *Rules[N]) EvaluateKernel(a, b []float64) float64 {
	return r.kernel.Evaluate(r.metric.Distance(a, b))
}

// EvaluateKernelIndex is EvaluateKernel for a query and a reference index.
func (r *Rules[N]) EvaluateKernelIndex(queryIndex, referenceIndex int) float64 {
	return r.EvaluateKernel(r.query[queryIndex], r.reference[referenceIndex])
}

// Bandwidth returns the kernel bandwidth, or ErrNoBandwidth when the kernel
// has none.
func (r *Rules[N]) Bandwidth() (float64, error) {
	if !r.hasBandwidth {
		return 0, ErrNoBandwidth
	}
	return r.bandwidth, nil
}

// BaseCases returns the number of point pairs evaluated exactly.
func (r *Rules[N]) BaseCases() uint64 { return r.baseCases }

// Scores returns the number of Score and ScoreNodes calls.
func (r *Rules[N]) Scores() uint64 { return r.scores }

// Prunes returns the number of nodes resolved from bounds or dropped on rescore.
func (r *Rules[N]) Prunes() uint64 { return r.prunes }

// MonteCarloEstimates returns the number of query/node estimates committed
// from samples.
func (r *Rules[N]) MonteCarloEstimates() uint64 { return r.mcEstimates }

// Approximated returns the query indices whose estimate includes an
// approximation with non-zero error.
func (r *Rules[N]) Approximated() *roaring.Bitmap { return r.approximated }

// TraversalInfo returns the traversal context.
func (r *Rules[N]) TraversalInfo() tree.TraversalInfo[N] { return r.info }

// SetTraversalInfo replaces the traversal context.
func (r *Rules[N]) SetTraversalInfo(info tree.TraversalInfo[N]) { r.info = info }

// count is the number of points of node that contribute to query q.
func (r *Rules[N]) count(q int, node N) int {
	n := node.NumDescendants()
	if r.excludeSelf && n > 0 && node.Contains(q) {
		n--
	}
	return n
}

func (r *Rules[N]) bank(q int, amount float64) {
	s := r.acc.slack[q] + amount
	r.acc.slack[q] = s
	if s > r.maxSlack {
		r.maxSlack = s
	}
}

// covers reports whether every query of qn can absorb deficit per
// contributing reference point of rn from its slack.
func (r *Rules[N]) covers(qn, rn N, deficit float64) bool {
	if math.IsNaN(deficit) {
		return false
	}
	if deficit <= 0 {
		return true
	}
	least := rn.NumDescendants()
	if r.excludeSelf {
		least--
	}
	if !(float64(least)*deficit <= r.maxSlack) {
		return false
	}
	for i := range qn.NumDescendants() {
		q := qn.Descendant(i)
		if !(float64(r.count(q, rn))*deficit <= r.acc.slack[q]) {
			return false
		}
	}
	return true
}
