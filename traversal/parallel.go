package traversal

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kdego/internal/resource"
	"github.com/hupe1980/kdego/tree"
)

// DefaultTasksPerWorker is how many tasks each worker gets on average.
// Several small tasks per worker even out uneven subtrees.
const DefaultTasksPerWorker = 4

// ParallelOptions configures the parallel drivers.
type ParallelOptions struct {
	// Workers bounds the goroutines running at once. Defaults to GOMAXPROCS.
	Workers int
	// TasksPerWorker defaults to DefaultTasksPerWorker.
	TasksPerWorker int
	// Controller, if set, supplies a worker slot for every running task.
	Controller *resource.Controller
	// BestFirst selects the best-first traverser for ParallelSingleTree.
	BestFirst bool
	// Naive makes ParallelSingleTree evaluate every pair. It wins over
	// BestFirst.
	Naive bool
}

func (o ParallelOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o ParallelOptions) tasks() int {
	per := o.TasksPerWorker
	if per <= 0 {
		per = DefaultTasksPerWorker
	}
	return o.workers() * per
}

// RulesFactory creates the rules for one task. Every task gets its own
// rules value; tasks write disjoint query indices.
type RulesFactory[R any] func(task int) (R, error)

// ParallelDualTree splits the query tree into disjoint subtrees and runs a
// dual-tree traversal of each against referenceRoot. It returns the rules of
// every task in task order.
func ParallelDualTree[N tree.Node[N], R DualTreeRules[N]](ctx context.Context, queryRoot, referenceRoot N, newRules RulesFactory[R], opts ParallelOptions) ([]R, error) {
	parts := Partition(queryRoot, opts.tasks())
	rules := make([]R, len(parts))
	for i := range parts {
		r, err := newRules(i)
		if err != nil {
			return nil, err
		}
		rules[i] = r
	}

	err := run(ctx, len(parts), opts, func(i int) {
		NewDualTree[N](rules[i]).Traverse(parts[i], referenceRoot)
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ParallelSingleTree splits the query indices [0, numQueries) into
// contiguous ranges and runs a single-tree traversal per range.
func ParallelSingleTree[N tree.Node[N], R SingleTreeRules[N]](ctx context.Context, numQueries int, referenceRoot N, newRules RulesFactory[R], opts ParallelOptions) ([]R, error) {
	ranges := splitRange(numQueries, opts.tasks())
	rules := make([]R, len(ranges))
	for i := range ranges {
		r, err := newRules(i)
		if err != nil {
			return nil, err
		}
		rules[i] = r
	}

	err := run(ctx, len(ranges), opts, func(i int) {
		rg := ranges[i]
		switch {
		case opts.Naive:
			NewNaive[N](rules[i]).TraverseRange(rg[0], rg[1], referenceRoot)
		case opts.BestFirst:
			NewBestFirst[N](rules[i]).TraverseRange(rg[0], rg[1], referenceRoot)
		default:
			NewSingleTree[N](rules[i]).TraverseRange(rg[0], rg[1], referenceRoot)
		}
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// run executes task(0..n-1) on a bounded errgroup. ctx is checked before
// each task starts; a running task is never interrupted.
func run(ctx context.Context, n int, opts ParallelOptions, task func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := opts.Controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer opts.Controller.ReleaseWorker()

			task(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Partition returns disjoint subtrees covering root, splitting the largest
// non-leaf node until there are at least want parts or only leaves remain.
func Partition[N tree.Node[N]](root N, want int) []N {
	parts := []N{root}
	for len(parts) < want {
		best := -1
		for i, p := range parts {
			if !p.IsLeaf() && (best < 0 || p.NumDescendants() > parts[best].NumDescendants()) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		node := parts[best]
		parts[best] = node.Child(0)
		for c := 1; c < node.NumChildren(); c++ {
			parts = append(parts, node.Child(c))
		}
	}
	return parts
}

// splitRange cuts [0, n) into at most want contiguous non-empty ranges.
func splitRange(n, want int) [][2]int {
	if n <= 0 {
		return nil
	}
	want = max(1, min(want, n))
	size := (n + want - 1) / want
	out := make([][2]int, 0, want)
	for begin := 0; begin < n; begin += size {
		out = append(out, [2]int{begin, min(begin+size, n)})
	}
	return out
}
