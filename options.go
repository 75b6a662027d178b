package kdego

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/kdego/internal/resource"
	"github.com/hupe1980/kdego/kde"
	"github.com/hupe1980/kdego/kernel"
	"github.com/hupe1980/kdego/metric"
	"github.com/hupe1980/kdego/tree"
)

// Mode selects how an Estimator traverses its trees.
type Mode int

const (
	// ModeDualTree traverses a query tree against the reference tree.
	ModeDualTree Mode = iota
	// ModeSingleTree traverses the reference tree depth-first per query.
	ModeSingleTree
	// ModeBestFirst traverses the reference tree nearest node first per query.
	ModeBestFirst
	// ModeBruteForce evaluates every pair exactly.
	ModeBruteForce
)

func (m Mode) String() string {
	switch m {
	case ModeDualTree:
		return "dual-tree"
	case ModeSingleTree:
		return "single-tree"
	case ModeBestFirst:
		return "best-first"
	case ModeBruteForce:
		return "brute-force"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "dual", "single", "bestfirst" or "brute" (or the String
// forms) to a Mode. The empty string is ModeDualTree.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "dual", "dual-tree":
		return ModeDualTree, nil
	case "single", "single-tree":
		return ModeSingleTree, nil
	case "bestfirst", "best-first":
		return ModeBestFirst, nil
	case "brute", "brute-force", "naive":
		return ModeBruteForce, nil
	default:
		return 0, fmt.Errorf("unsupported mode: %q", name)
	}
}

// TreeType selects the space-partitioning tree.
type TreeType int

const (
	// TreeKD is a kd-tree with bounding boxes.
	TreeKD TreeType = iota
	// TreeBall is a pivot ball tree.
	TreeBall
)

func (t TreeType) String() string {
	switch t {
	case TreeKD:
		return "kd"
	case TreeBall:
		return "ball"
	default:
		return fmt.Sprintf("TreeType(%d)", int(t))
	}
}

// ParseTreeType maps "kd" or "ball" to a TreeType. The empty string is TreeKD.
func ParseTreeType(name string) (TreeType, error) {
	switch name {
	case "", "kd", "kd-tree":
		return TreeKD, nil
	case "ball", "ball-tree":
		return TreeBall, nil
	default:
		return 0, fmt.Errorf("unsupported tree: %q", name)
	}
}

// ResourceLimits bounds memory, worker slots and persistence throughput.
type ResourceLimits = resource.Config

// ResourceController enforces ResourceLimits. One controller may be shared
// by several estimators.
type ResourceController = resource.Controller

// NewResourceController creates a controller for the given limits.
func NewResourceController(limits ResourceLimits) *ResourceController {
	return resource.NewController(limits)
}

type options struct {
	kernel           kernel.Kernel
	metric           metric.Metric
	tree             TreeType
	mode             Mode
	leafSize         int
	kde              kde.Config
	normalize        bool
	workers          int
	tasksPerWorker   int
	rc               *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Estimator.
type Option func(*options)

// WithKernel sets the kernel. The default is a Gaussian with bandwidth 1.
func WithKernel(k kernel.Kernel) Option {
	return func(o *options) {
		if k != nil {
			o.kernel = k
		}
	}
}

// WithMetric sets the distance metric. The default is Euclidean.
func WithMetric(m metric.Metric) Option {
	return func(o *options) {
		if m != nil {
			o.metric = m
		}
	}
}

// WithTree selects the tree type.
func WithTree(t TreeType) Option {
	return func(o *options) {
		o.tree = t
	}
}

// WithMode selects the traversal.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithLeafSize sets the maximum number of points per leaf.
func WithLeafSize(n int) Option {
	return func(o *options) {
		o.leafSize = n
	}
}

// WithRelError sets the relative error tolerance (default 0.05).
func WithRelError(rel float64) Option {
	return func(o *options) {
		o.kde.RelError = rel
	}
}

// WithAbsError sets the absolute error tolerance (default 0).
func WithAbsError(abs float64) Option {
	return func(o *options) {
		o.kde.AbsError = abs
	}
}

// WithMonteCarlo enables sampled estimates of large reference nodes.
//
// Example:
//
//	mc := kde.DefaultMonteCarloConfig()
//	mc.Enabled = true
//	mc.SuccessProbability = 0.9
//	est, _ := kdego.New(points, kdego.WithMonteCarlo(mc))
func WithMonteCarlo(cfg kde.MonteCarloConfig) Option {
	return func(o *options) {
		o.kde.MonteCarlo = cfg
	}
}

// WithIncludeSelf counts every point's contribution to its own density in
// EvaluateSelf. By default it is left out.
func WithIncludeSelf(include bool) Option {
	return func(o *options) {
		o.kde.IncludeSelf = include
	}
}

// WithNormalize turns kernel sums into probability densities. The kernel
// must expose a bandwidth and implement kernel.Normalizer.
func WithNormalize(normalize bool) Option {
	return func(o *options) {
		o.normalize = normalize
	}
}

// WithSeed seeds Monte Carlo sampling. Task i of an evaluation draws from
// seed+i, so results are reproducible for a fixed worker count.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.kde.Seed = seed
	}
}

// WithWorkers bounds the goroutines of one evaluation. The default is
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithTasksPerWorker sets how many traversal tasks each worker gets on average.
func WithTasksPerWorker(n int) Option {
	return func(o *options) {
		o.tasksPerWorker = n
	}
}

// WithResourceController shares worker slots and memory accounting with
// other estimators.
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kdego.BasicMetricsCollector{}
//	est, _ := kdego.New(points, kdego.WithMetricsCollector(metrics))
//	// ... evaluate ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kdego.NewJSONLogger(slog.LevelInfo)
//	est, _ := kdego.New(points, kdego.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		kernel:           kernel.Gaussian{H: 1},
		metric:           metric.Euclidean{},
		tree:             TreeKD,
		mode:             ModeDualTree,
		leafSize:         tree.DefaultLeafSize,
		kde:              kde.DefaultConfig(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
