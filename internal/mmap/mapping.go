package mmap

import (
	"io"
	"os"
	"sync/atomic"
	"unsafe"
)

var littleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Mapping is a read-only view of a whole file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. Empty files yield an empty mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Close unmaps the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the mapped bytes, or nil after Close. The slice must not be
// used once the mapping is closed.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the mapped length in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Advise passes an access hint for the whole mapping.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Float64s returns count little-endian float64 values starting at byte
// offset off as a zero-copy slice. ok is false when the platform is big
// endian or the values are not 8-byte aligned; callers then decode from
// Bytes instead.
func (m *Mapping) Float64s(off, count int) (values []float64, ok bool, err error) {
	if m.closed.Load() {
		return nil, false, ErrClosed
	}
	if off < 0 || count < 0 {
		return nil, false, ErrInvalidOffset
	}
	if off > len(m.data) || count > (len(m.data)-off)/8 {
		return nil, false, ErrOutOfBounds
	}
	if count == 0 {
		return []float64{}, true, nil
	}
	if !littleEndian || uintptr(unsafe.Pointer(&m.data[off]))%8 != 0 {
		return nil, false, nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&m.data[off])), count), true, nil
}
