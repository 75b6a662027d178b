package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(t.Context(), 50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(t.Context(), 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Would exceed the limit
	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(ctx, 20), context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	assert.True(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())

	assert.ErrorIs(t, c.AcquireMemory(t.Context(), 101), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(t.Context(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Zero(t, c.MemoryLimit())

	// Non-positive requests are ignored
	require.NoError(t, c.AcquireMemory(t.Context(), -1))
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.MaxWorkers())

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))
	assert.False(t, c.TryAcquireWorker())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireWorker(ctx))

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())

	assert.Equal(t, 1, NewController(Config{}).MaxWorkers())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})
	assert.NoError(t, c.AcquireIO(t.Context(), 100))
	assert.True(t, c.TryAcquireIO(10))

	unlimited := NewController(Config{})
	assert.NoError(t, unlimited.AcquireIO(t.Context(), 1<<30))
	assert.True(t, unlimited.TryAcquireIO(1<<30))
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// Two bursts: the first is available immediately, the second waits.
	start := time.Now()
	require.NoError(t, c.AcquireIO(t.Context(), 2<<20))
	assert.Greater(t, time.Since(start), 500*time.Millisecond)
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(t.Context(), 100))
	assert.True(t, c.TryAcquireMemory(100))
	c.ReleaseMemory(100)
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.MemoryLimit())
	assert.Zero(t, c.MaxWorkers())

	assert.NoError(t, c.AcquireWorker(t.Context()))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()

	assert.NoError(t, c.AcquireIO(t.Context(), 100))
	assert.True(t, c.TryAcquireIO(100))
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10000})

	var buf bytes.Buffer
	w := NewRateLimitedWriter(t.Context(), &buf, c)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10000})

	r := NewRateLimitedReader(t.Context(), bytes.NewReader([]byte("hello world")), c)

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestRateLimitedReader_ContextCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	r := NewRateLimitedReader(ctx, bytes.NewReader([]byte("hello world")), c)
	_, err := r.Read(make([]byte, 1000))
	assert.Error(t, err)
}
