package kdego

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdego/kde"
	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/traversal"
	"github.com/hupe1980/kdego/tree"
)

// accumulatorBytes is the per-query footprint of a kde.Accumulator.
const accumulatorBytes = 3 * 8

// Estimator evaluates kernel density estimates against a fixed reference set.
//
// The reference tree is built once by New. An Estimator is safe for
// concurrent use; every evaluation works on its own accumulator and rules.
type Estimator struct {
	opts options
	dim  int
	n    int

	kd   *tree.KDTree
	ball *tree.BallTree
}

// New builds an estimator over reference. Rows are shared with the tree and
// must not be modified afterwards.
//
// Invalid tolerances, sampling parameters or kernel capabilities are
// reported as *ConfigurationError.
func New(reference [][]float64, optFns ...Option) (*Estimator, error) {
	o := applyOptions(optFns)
	if err := validateOptions(o); err != nil {
		return nil, err
	}

	dim, err := tree.Validate(reference)
	if err != nil {
		return nil, translateError(err)
	}

	e := &Estimator{opts: o, dim: dim, n: len(reference)}

	ctx := context.Background()
	start := time.Now()
	switch o.tree {
	case TreeBall:
		e.ball, err = tree.BuildBall(reference, o.leafSize, o.metric)
	default:
		e.kd, err = tree.BuildKD(reference, o.leafSize, o.metric)
	}
	elapsed := time.Since(start)
	o.metricsCollector.RecordBuild(len(reference), elapsed, err)
	o.logger.LogBuild(ctx, o.tree, len(reference), o.leafSize, elapsed, err)
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func validateOptions(o options) error {
	if o.mode < ModeDualTree || o.mode > ModeBruteForce {
		return &ConfigurationError{Parameter: "mode", Reason: o.mode.String() + " is not a traversal mode"}
	}
	if o.tree != TreeKD && o.tree != TreeBall {
		return &ConfigurationError{Parameter: "tree", Reason: o.tree.String() + " is not a tree type"}
	}

	// IncludeSelf is only checked against same-set evaluation.
	cfg := o.kde
	cfg.SameSet = true
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, hasBandwidth := o.kernel.Bandwidth()
	if cfg.MonteCarlo.Enabled && !hasBandwidth {
		return kde.ErrNoBandwidth
	}
	if o.normalize {
		if !hasBandwidth {
			return kde.ErrNoBandwidth
		}
		if _, ok := o.kernel.(kernel.Normalizer); !ok {
			return &ConfigurationError{Parameter: "normalize", Reason: "kernel has no normalizing constant"}
		}
	}
	return nil
}

// Dim returns the dimension of the reference points.
func (e *Estimator) Dim() int { return e.dim }

// Len returns the number of reference points.
func (e *Estimator) Len() int { return e.n }

// Mode returns the traversal mode.
func (e *Estimator) Mode() Mode { return e.opts.mode }

// TreeStats describes the reference tree.
func (e *Estimator) TreeStats() tree.Stats {
	if e.ball != nil {
		return tree.Describe(e.ball.Root())
	}
	return tree.Describe(e.kd.Root())
}

// Evaluate estimates the density at every query point. Densities are
// returned in query order.
func (e *Estimator) Evaluate(ctx context.Context, query [][]float64) (*Result, error) {
	if len(query) == 0 {
		return &Result{Densities: []float64{}, Approximated: roaring.New()}, nil
	}
	dim, err := tree.Validate(query)
	if err != nil {
		return nil, translateError(err)
	}
	if dim != e.dim {
		return nil, &ErrDimensionMismatch{Expected: e.dim, Actual: dim}
	}
	return e.evaluate(ctx, query, false)
}

// EvaluateSelf estimates the density at every reference point, leaving out
// each point's own contribution unless WithIncludeSelf was given.
func (e *Estimator) EvaluateSelf(ctx context.Context) (*Result, error) {
	return e.evaluate(ctx, nil, true)
}

func (e *Estimator) evaluate(ctx context.Context, query [][]float64, sameSet bool) (*Result, error) {
	logger := e.opts.logger.WithMode(e.opts.mode)
	queries := len(query)
	if sameSet {
		queries = e.n
	}

	start := time.Now()
	res, err := e.dispatch(ctx, query, sameSet, queries)
	elapsed := time.Since(start)

	var stats EvaluateStats
	if err == nil {
		res.Duration = elapsed
		stats = res.Stats()
	}
	e.opts.metricsCollector.RecordEvaluate(e.opts.mode, queries, stats, elapsed, err)
	logger.LogEvaluate(ctx, queries, stats, elapsed, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Estimator) dispatch(ctx context.Context, query [][]float64, sameSet bool, queries int) (*Result, error) {
	bytes := int64(queries) * accumulatorBytes
	if err := e.opts.rc.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	defer e.opts.rc.ReleaseMemory(bytes)

	if e.ball != nil {
		return run[*tree.BallNode](ctx, e, e.ball, func(points [][]float64) (tree.Tree[*tree.BallNode], error) {
			return tree.BuildBall(points, e.opts.leafSize, e.opts.metric)
		}, query, sameSet)
	}
	return run[*tree.KDNode](ctx, e, e.kd, func(points [][]float64) (tree.Tree[*tree.KDNode], error) {
		return tree.BuildKD(points, e.opts.leafSize, e.opts.metric)
	}, query, sameSet)
}

// run evaluates query (or the reference set itself) against ref with the
// estimator's traversal and maps the result back to input order.
func run[N tree.Node[N]](ctx context.Context, e *Estimator, ref tree.Tree[N], build func([][]float64) (tree.Tree[N], error), query [][]float64, sameSet bool) (*Result, error) {
	o := e.opts

	// Query points in the order the traversal indexes them, and the map back
	// to input order (nil for identity).
	var (
		points    [][]float64
		order     []int
		queryRoot N
	)
	switch {
	case sameSet:
		points, order, queryRoot = ref.Points(), ref.OldFromNew(), ref.Root()
	case o.mode == ModeDualTree:
		qt, err := build(query)
		if err != nil {
			return nil, translateError(err)
		}
		points, order, queryRoot = qt.Points(), qt.OldFromNew(), qt.Root()
	default:
		points = query
	}

	cfg := o.kde
	cfg.SameSet = sameSet
	if !sameSet {
		cfg.IncludeSelf = false
	}

	acc := kde.NewAccumulator(len(points), cfg.FailureBudget())
	factory := func(task int) (*kde.Rules[N], error) {
		c := cfg
		c.Seed = cfg.Seed + uint64(task)
		return kde.NewRules[N](ref.Points(), points, acc, o.metric, o.kernel, c)
	}
	popts := traversal.ParallelOptions{
		Workers:        o.workers,
		TasksPerWorker: o.tasksPerWorker,
		Controller:     o.rc,
		BestFirst:      o.mode == ModeBestFirst,
		Naive:          o.mode == ModeBruteForce,
	}

	var (
		rules []*kde.Rules[N]
		err   error
	)
	if o.mode == ModeDualTree {
		rules, err = traversal.ParallelDualTree[N, *kde.Rules[N]](ctx, queryRoot, ref.Root(), factory, popts)
	} else {
		rules, err = traversal.ParallelSingleTree[N, *kde.Rules[N]](ctx, len(points), ref.Root(), factory, popts)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Densities:    make([]float64, len(points)),
		Approximated: roaring.New(),
	}
	scale := e.normalizer(sameSet && !cfg.IncludeSelf)
	for i, d := range acc.Densities() {
		res.Densities[index(order, i)] = d * scale
	}
	for _, r := range rules {
		res.BaseCases += r.BaseCases()
		res.Scores += r.Scores()
		res.Prunes += r.Prunes()
		res.MonteCarloEstimates += r.MonteCarloEstimates()

		it := r.Approximated().Iterator()
		for it.HasNext() {
			res.Approximated.Add(uint32(index(order, int(it.Next()))))
		}
	}
	return res, nil
}

func index(order []int, i int) int {
	if order == nil {
		return i
	}
	return order[i]
}

// normalizer is the factor applied to kernel sums: 1 without normalization,
// otherwise the kernel's normalizing constant over the number of
// contributing reference points.
func (e *Estimator) normalizer(excludeSelf bool) float64 {
	if !e.opts.normalize {
		return 1
	}
	n := e.n
	if excludeSelf && n > 1 {
		n--
	}
	return e.opts.kernel.(kernel.Normalizer).Normalizer(e.dim) / float64(n)
}
