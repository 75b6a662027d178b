package kdego

import (
	"context"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdego/blobstore"
	"github.com/hupe1980/kdego/codec"
	"github.com/hupe1980/kdego/persistence"
	"github.com/hupe1980/kdego/testutil"
)

func sampleResult() *Result {
	rng := testutil.NewRNG(21)
	densities := make([]float64, 500)
	for i := range densities {
		densities[i] = rng.Float64() * 10
	}
	return &Result{
		Densities:           densities,
		Approximated:        roaring.BitmapOf(3, 7, 499),
		BaseCases:           1234,
		Scores:              99,
		Prunes:              42,
		MonteCarloEstimates: 5,
		Duration:            3 * time.Millisecond,
	}
}

func stores(t *testing.T) map[string]blobstore.Store {
	return map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
}

func requireSameResult(t *testing.T, want, got *Result) {
	t.Helper()
	assert.Equal(t, want.Densities, got.Densities)
	assert.True(t, want.Approximated.Equals(got.Approximated))
	assert.Equal(t, want.BaseCases, got.BaseCases)
	assert.Equal(t, want.Scores, got.Scores)
	assert.Equal(t, want.Prunes, got.Prunes)
	assert.Equal(t, want.MonteCarloEstimates, got.MonteCarloEstimates)
	assert.Equal(t, want.Duration, got.Duration)
}

func TestSaveLoadResult(t *testing.T) {
	want := sampleResult()

	for storeName, store := range stores(t) {
		for _, c := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZSTD} {
			t.Run(storeName+"/"+c.String(), func(t *testing.T) {
				ctx := t.Context()
				name := "run-" + c.String()
				require.NoError(t, SaveResult(ctx, store, name, want, WithCompression(c)))

				got, err := LoadResult(ctx, store, name)
				require.NoError(t, err)
				requireSameResult(t, want, got)

				latest, err := LoadLatestResult(ctx, store)
				require.NoError(t, err)
				requireSameResult(t, want, latest)
			})
		}
	}
}

func TestSaveResult_Exact(t *testing.T) {
	store := blobstore.NewMemoryStore()
	want := &Result{Densities: []float64{1, 2, 3}}

	require.NoError(t, SaveResult(t.Context(), store, "exact", want, WithCodec(codec.JSON{})))
	got, err := LoadResult(t.Context(), store, "exact", WithCodec(codec.GoJSON{}))
	require.NoError(t, err)
	assert.Equal(t, want.Densities, got.Densities)
	assert.True(t, got.IsExact())
}

func TestLoadLatestResult_FollowsCurrent(t *testing.T) {
	ctx := t.Context()
	store := blobstore.NewLocalStore(t.TempDir())

	first := sampleResult()
	second := &Result{Densities: []float64{0.5}, Approximated: roaring.New()}
	require.NoError(t, SaveResult(ctx, store, "a", first))
	require.NoError(t, SaveResult(ctx, store, "b", second))

	latest, err := LoadLatestResult(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, second.Densities, latest.Densities)

	names, err := ListResults(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	older, err := LoadResult(ctx, store, "a")
	require.NoError(t, err)
	requireSameResult(t, first, older)
}

func TestLoadResult_Errors(t *testing.T) {
	ctx := t.Context()

	t.Run("no current", func(t *testing.T) {
		_, err := LoadLatestResult(ctx, blobstore.NewMemoryStore())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadResult(ctx, blobstore.NewMemoryStore(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid name", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		assert.Error(t, SaveResult(ctx, store, "", sampleResult()))
		assert.Error(t, SaveResult(ctx, store, blobstore.CurrentName, sampleResult()))
		_, err := LoadResult(ctx, store, "dir/")
		assert.Error(t, err)
	})

	t.Run("corrupt densities", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, SaveResult(ctx, store, "r", sampleResult(), WithCompression(persistence.CompressionNone)))

		b, err := store.Open(ctx, "r/"+densitiesBlob)
		require.NoError(t, err)
		data, err := blobstore.ReadAll(ctx, b)
		require.NoError(t, err)
		corrupted := append([]byte(nil), data...)
		corrupted[len(corrupted)-1] ^= 0xff
		require.NoError(t, store.Put(ctx, "r/"+densitiesBlob, corrupted))

		_, err = LoadResult(ctx, store, "r")
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.ErrorIs(t, err, persistence.ErrChecksumMismatch)
	})

	t.Run("corrupt manifest", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, SaveResult(ctx, store, "r", sampleResult()))
		require.NoError(t, store.Put(ctx, "r/"+manifestBlob, []byte("{not json")))

		_, err := LoadResult(ctx, store, "r")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("empty current", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("  \n")))
		_, err := LoadLatestResult(ctx, store)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestSaveResult_Observability(t *testing.T) {
	ctx := t.Context()
	store := blobstore.NewMemoryStore()
	metrics := &BasicMetricsCollector{}
	rc := NewResourceController(ResourceLimits{IOLimitBytesPerSec: 1 << 30})

	opts := []PersistOption{WithPersistMetrics(metrics), WithPersistLogger(nil), WithIOController(rc)}
	require.NoError(t, SaveResult(ctx, store, "r", sampleResult(), opts...))
	_, err := LoadResult(ctx, store, "r", opts...)
	require.NoError(t, err)
	_, err = LoadResult(ctx, store, "missing", opts...)
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.PersistCount)
	assert.Equal(t, int64(1), stats.PersistErrors)
	assert.Positive(t, stats.PersistBytes)
}

func TestSaveResult_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := SaveResult(ctx, blobstore.NewMemoryStore(), "r", sampleResult())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateThenPersist(t *testing.T) {
	ctx := t.Context()
	rng := testutil.NewRNG(30)
	reference := rng.ClusteredPoints(300, 2, 3, 0.05)

	est, err := New(reference, WithRelError(0.05))
	require.NoError(t, err)
	res, err := est.EvaluateSelf(ctx)
	require.NoError(t, err)

	store := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, SaveResult(ctx, store, "self", res))
	got, err := LoadLatestResult(ctx, store)
	require.NoError(t, err)
	requireSameResult(t, res, got)
}
