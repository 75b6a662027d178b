package tree

import (
	"math"
	"sort"
	"testing"

	"github.com/hupe1980/kdego/metric"
	"github.com/hupe1980/kdego/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func checkPermutation(t *testing.T, input, points [][]float64, oldFromNew []int) {
	t.Helper()
	require.Len(t, points, len(input))
	seen := make([]int, len(oldFromNew))
	copy(seen, oldFromNew)
	sort.Ints(seen)
	for i, v := range seen {
		require.Equal(t, i, v)
	}
	for i, p := range points {
		assert.Equal(t, input[oldFromNew[i]], p)
	}
}

// Every bound must contain every realized distance.
func checkBounds[N Node[N]](t *testing.T, root N, points [][]float64, m metric.Metric, probes [][]float64) {
	t.Helper()
	var nodes []N
	var collect func(n N)
	collect = func(n N) {
		nodes = append(nodes, n)
		for i := range n.NumChildren() {
			collect(n.Child(i))
		}
	}
	collect(root)

	for _, n := range nodes {
		for _, q := range probes {
			r := n.PointRange(q)
			for i := range n.NumDescendants() {
				d := m.Distance(q, points[n.Descendant(i)])
				require.GreaterOrEqual(t, d, r.Lo-eps)
				require.LessOrEqual(t, d, r.Hi+eps)
			}
		}
		if c, ok := n.Center(); ok {
			require.True(t, n.Contains(c))
			for i := range n.NumDescendants() {
				require.LessOrEqual(t, m.Distance(points[c], points[n.Descendant(i)]), n.FurthestDescendantDistance()+eps)
			}
		}
	}

	// Sample node pairs rather than all of them.
	for i := 0; i < len(nodes); i += 3 {
		for j := 0; j < len(nodes); j += 5 {
			a, b := nodes[i], nodes[j]
			r := a.NodeRange(b)
			for x := range a.NumDescendants() {
				for y := range b.NumDescendants() {
					d := m.Distance(points[a.Descendant(x)], points[b.Descendant(y)])
					require.GreaterOrEqual(t, d, r.Lo-eps)
					require.LessOrEqual(t, d, r.Hi+eps)
				}
			}
		}
	}
}

func checkStructure[N Node[N]](t *testing.T, root N, leafSize int) {
	t.Helper()
	var walk func(n N)
	walk = func(n N) {
		if n.IsLeaf() {
			assert.LessOrEqual(t, n.NumDescendants(), leafSize)
			return
		}
		require.Equal(t, 2, n.NumChildren())
		l, r := n.Child(0), n.Child(1)
		assert.Equal(t, n.NumDescendants(), l.NumDescendants()+r.NumDescendants())
		assert.Equal(t, n.Descendant(0), l.Descendant(0))
		assert.Equal(t, l.Descendant(l.NumDescendants()-1)+1, r.Descendant(0))
		assert.Greater(t, l.NumDescendants(), 0)
		assert.Greater(t, r.NumDescendants(), 0)
		walk(l)
		walk(r)
	}
	walk(root)
}

func TestBuildKD(t *testing.T) {
	rng := testutil.NewRNG(11)
	input := rng.ClusteredPoints(300, 3, 4, 0.1)
	probes := rng.UniformRangePoints(5, 3, -0.5, 1.5)

	for _, m := range []metric.Metric{metric.Euclidean{}, metric.Manhattan{}, metric.Chebyshev{}, metric.Minkowski{P: 3}} {
		kd, err := BuildKD(input, 10, m)
		require.NoError(t, err)

		checkPermutation(t, input, kd.Points(), kd.OldFromNew())
		checkStructure(t, kd.Root(), 10)
		checkBounds(t, kd.Root(), kd.Points(), m, probes)

		_, ok := kd.Root().Center()
		assert.False(t, ok)
		assert.Equal(t, m, kd.Metric())
	}
}

func TestKDNode_Box(t *testing.T) {
	kd, err := BuildKD([][]float64{{0, 0}, {2, 4}}, 5, metric.Euclidean{})
	require.NoError(t, err)
	root := kd.Root()
	assert.True(t, root.IsLeaf())
	assert.Equal(t, []float64{0, 0}, root.Lo())
	assert.Equal(t, []float64{2, 4}, root.Hi())
	assert.InDelta(t, math.Sqrt(5), root.FurthestDescendantDistance(), eps)

	r := root.PointRange([]float64{1, 2})
	assert.Zero(t, r.Lo)
	assert.InDelta(t, math.Sqrt(5), r.Hi, eps)
}

func TestBuildBall(t *testing.T) {
	rng := testutil.NewRNG(12)
	input := rng.GaussianPoints(250, 2)
	probes := rng.UniformRangePoints(5, 2, -3, 3)

	for _, m := range []metric.Metric{metric.Euclidean{}, metric.Manhattan{}} {
		bt, err := BuildBall(input, 8, m)
		require.NoError(t, err)

		checkPermutation(t, input, bt.Points(), bt.OldFromNew())
		checkStructure(t, bt.Root(), 8)
		checkBounds(t, bt.Root(), bt.Points(), m, probes)
		assert.Equal(t, m, bt.Metric())
	}
}

func TestBallTree_LeftChildSharesPivot(t *testing.T) {
	bt, err := BuildBall(testutil.NewRNG(5).UniformPoints(64, 2), 4, nil)
	require.NoError(t, err)

	var walk func(n *BallNode)
	walk = func(n *BallNode) {
		if n.IsLeaf() {
			return
		}
		pc, _ := n.Center()
		lc, _ := n.Child(0).Center()
		rc, _ := n.Child(1).Center()
		assert.Equal(t, pc, lc)
		assert.Equal(t, n.Child(1).Descendant(0), rc)
		walk(n.Child(0))
		walk(n.Child(1))
	}
	walk(bt.Root())
}

func TestIdenticalPoints(t *testing.T) {
	input := make([][]float64, 50)
	for i := range input {
		input[i] = []float64{1, 1}
	}

	kd, err := BuildKD(input, 4, nil)
	require.NoError(t, err)
	assert.True(t, kd.Root().IsLeaf())
	assert.Equal(t, 50, kd.Root().NumDescendants())

	bt, err := BuildBall(input, 4, nil)
	require.NoError(t, err)
	assert.True(t, bt.Root().IsLeaf())
	assert.Zero(t, bt.Root().FurthestDescendantDistance())
}

func TestBuildErrors(t *testing.T) {
	_, err := BuildKD(nil, 10, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = BuildBall([][]float64{}, 10, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = BuildKD([][]float64{{1, 2}, {3}}, 10, nil)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 1, dm.Index)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 1, dm.Actual)

	_, err = BuildKD([][]float64{{math.NaN()}}, 10, nil)
	assert.Error(t, err)
}

func TestDefaultLeafSize(t *testing.T) {
	kd, err := BuildKD(testutil.NewRNG(1).UniformPoints(100, 2), 0, nil)
	require.NoError(t, err)
	s := Describe(kd.Root())
	assert.LessOrEqual(t, s.MaxLeaf, DefaultLeafSize)
	assert.Equal(t, 2*s.Leaves-1, s.Nodes)
	assert.Greater(t, s.MaxDepth, 0)
}

func TestTraversalInfo(t *testing.T) {
	info := NewTraversalInfo[*KDNode]()
	_, ok := info.CachedDistance(-1, -1)
	assert.False(t, ok)

	info.Remember(3, 7, 1.5)
	d, ok := info.CachedDistance(3, 7)
	assert.True(t, ok)
	assert.Equal(t, 1.5, d)

	_, ok = info.CachedDistance(7, 3)
	assert.False(t, ok)
}
