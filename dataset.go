package kdego

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/kdego/blobstore"
	"github.com/hupe1980/kdego/internal/resource"
	"github.com/hupe1980/kdego/persistence"
)

// SaveDataset stores points as a matrix blob.
func SaveDataset(ctx context.Context, store blobstore.Store, name string, points [][]float64, optFns ...PersistOption) (err error) {
	o := applyPersistOptions(optFns)
	start := time.Now()
	var written int64
	defer func() { o.record(ctx, "save_dataset", name, written, start, err) }()

	var buf bytes.Buffer
	if _, err := persistence.WriteMatrix(resource.NewRateLimitedWriter(ctx, &buf, o.rc), points, o.compression); err != nil {
		return err
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	written = int64(buf.Len())
	return nil
}

// LoadDataset reads a matrix blob written by SaveDataset. Uncompressed
// matrices in memory-mapped blobs are decoded from the mapping without an
// intermediate read. The returned rows never alias the blob.
func LoadDataset(ctx context.Context, store blobstore.Store, name string, optFns ...PersistOption) ([][]float64, error) {
	o := applyPersistOptions(optFns)
	start := time.Now()

	var size int64
	points, err := func() ([][]float64, error) {
		b, err := store.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer b.Close()
		size = b.Size()

		if points, ok, err := viewMatrix(ctx, b); ok || err != nil {
			return points, err
		}
		return persistence.ReadMatrix(resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, b), o.rc))
	}()

	o.record(ctx, "load_dataset", name, size, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return points, nil
}

// viewMatrix decodes an uncompressed matrix in place. ok is false when the
// blob cannot be viewed and must be streamed instead.
func viewMatrix(ctx context.Context, b blobstore.Blob) ([][]float64, bool, error) {
	viewer, ok := b.(blobstore.Float64Viewer)
	if !ok || b.Size() < persistence.HeaderSize {
		return nil, false, nil
	}

	var hdr [persistence.HeaderSize]byte
	if _, err := b.ReadAt(ctx, hdr[:], 0); err != nil {
		return nil, false, err
	}
	h, err := persistence.ParseHeader(hdr[:])
	if err != nil {
		return nil, false, err
	}
	if h.Compression != persistence.CompressionNone || h.Kind != persistence.KindMatrix {
		return nil, false, nil
	}
	n, err := h.Values()
	if err != nil {
		return nil, false, err
	}
	if want := persistence.HeaderSize + int64(n)*8; b.Size() != want {
		return nil, false, fmt.Errorf("%w: blob is %d bytes, header implies %d", persistence.ErrCorrupt, b.Size(), want)
	}

	values, ok, err := viewer.Float64s(persistence.HeaderSize, n)
	if err != nil || !ok {
		return nil, false, err
	}
	points, err := persistence.MatrixFromValues(h, values)
	if err != nil {
		return nil, false, err
	}
	return points, true, nil
}
