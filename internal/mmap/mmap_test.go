package mmap

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestMapping_OpenReadClose(t *testing.T) {
	content := []byte("density blob")
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "blob", string(buf))

	n, err = m.ReadAt(make([]byte, 10), 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	buf = make([]byte, 10)
	n, err = m.ReadAt(buf, 8)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)

	require.NoError(t, m.Advise(AccessSequential))
}

func TestMapping_EmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(AccessRandom))
}

func TestMapping_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapping_Float64s(t *testing.T) {
	if !littleEndian {
		t.Skip("zero-copy views need a little-endian platform")
	}

	want := []float64{1.5, -2, math.Pi, 0}
	data := make([]byte, 8+8*len(want))
	copy(data, "KDEGhead")
	for i, v := range want {
		binary.LittleEndian.PutUint64(data[8+8*i:], math.Float64bits(v))
	}

	m, err := Open(writeFile(t, data))
	require.NoError(t, err)
	defer m.Close()

	got, ok, err := m.Float64s(8, len(want))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = m.Float64s(4, 1)
	require.NoError(t, err)
	assert.False(t, ok, "unaligned view")

	got, ok, err = m.Float64s(len(data), 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	_, _, err = m.Float64s(8, len(want)+1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, _, err = m.Float64s(len(data)+8, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, _, err = m.Float64s(-8, 1)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestMapping_AfterClose(t *testing.T) {
	m, err := Open(writeFile(t, []byte("data")))
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = m.Float64s(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
}
