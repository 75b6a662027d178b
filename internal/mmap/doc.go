// Package mmap maps local blobs read-only into memory.
//
// blobstore.LocalStore opens every blob through this package so persisted
// datasets can be decoded without an extra copy through kernel buffers:
//
//	m, err := mmap.Open("reference.kdeg")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	values, ok, err := m.Float64s(headerSize, rows*cols)
//
// Unix platforms use mmap(2) and madvise(2), Windows uses
// CreateFileMapping/MapViewOfFile (advice is a no-op), and other platforms
// fall back to reading the file into memory.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but slices
// obtained from Bytes or Float64s must not be used after it returns.
package mmap
