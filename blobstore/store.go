package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist. It is os.ErrNotExist
// so filesystem errors match it too.
var ErrNotFound = os.ErrNotExist

// CurrentName is the pointer blob naming the latest saved result.
const CurrentName = "CURRENT"

// Store holds immutable named blobs. Implementations must be safe for
// concurrent use.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Size() int64
	Close() error
}

// Mappable is implemented by blobs whose content is already in memory.
type Mappable interface {
	// Bytes returns the content. The slice is valid until the blob is closed.
	Bytes() ([]byte, error)
}

// Float64Viewer is implemented by blobs that can expose little-endian
// float64 values in place. ok is false when no aligned view exists.
type Float64Viewer interface {
	Float64s(off, count int) (values []float64, ok bool, err error)
}

// ReadAll returns the whole content of b. For Mappable blobs the result
// aliases the blob and is valid until it is closed.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}
	buf := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return nil, err
	}
	return buf[:n], nil
}

// NewReader returns a sequential reader over b.
func NewReader(ctx context.Context, b Blob) io.Reader {
	return &blobReader{ctx: ctx, b: b}
}

type blobReader struct {
	ctx context.Context
	b   Blob
	off int64
}

func (r *blobReader) Read(p []byte) (int, error) {
	if r.off >= r.b.Size() {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.b.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}

// NewBytesBlob returns a blob serving data from memory.
func NewBytesBlob(data []byte) Blob {
	return &bytesBlob{data: data}
}

type bytesBlob struct {
	data []byte
}

func (b *bytesBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *bytesBlob) Size() int64 { return int64(len(b.data)) }

func (b *bytesBlob) Close() error { return nil }

func (b *bytesBlob) Bytes() ([]byte, error) { return b.data, nil }
