package persistence

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/kdego/internal/hash"
)

const chunkValues = 8 * 1024

// WriteMatrix encodes points as a matrix file and returns the bytes written.
func WriteMatrix(w io.Writer, points [][]float64, c Compression) (int64, error) {
	h := Header{Version: Version, Kind: KindMatrix, Compression: c, Rows: uint64(len(points))}
	if len(points) > 0 {
		h.Cols = uint64(len(points[0]))
	}
	for i, p := range points {
		if uint64(len(p)) != h.Cols {
			return 0, fmt.Errorf("%w: row %d has %d values, want %d", ErrRagged, i, len(p), h.Cols)
		}
	}
	return write(w, h, points)
}

// WriteDensities encodes a density vector and returns the bytes written.
func WriteDensities(w io.Writer, densities []float64, c Compression) (int64, error) {
	h := Header{Version: Version, Kind: KindDensities, Compression: c, Rows: uint64(len(densities)), Cols: 1}
	return write(w, h, [][]float64{densities})
}

// ReadMatrix decodes a matrix file. Rows are freshly allocated.
func ReadMatrix(r io.Reader) ([][]float64, error) {
	h, values, err := read(r, KindMatrix)
	if err != nil {
		return nil, err
	}
	return rows(h, values), nil
}

// ReadDensities decodes a density file.
func ReadDensities(r io.Reader) ([]float64, error) {
	_, values, err := read(r, KindDensities)
	return values, err
}

// MatrixFromValues copies an uncompressed matrix payload that was viewed in
// place (see internal/mmap) into fresh rows after verifying its checksum.
func MatrixFromValues(h Header, values []float64) ([][]float64, error) {
	if h.Kind != KindMatrix {
		return nil, fmt.Errorf("%w: %s", ErrKindMismatch, h.Kind)
	}
	n, err := h.Values()
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %d values, header says %d", ErrCorrupt, len(values), n)
	}

	crc := uint32(0)
	var scratch []byte
	for i := 0; i < len(values); i += chunkValues {
		scratch = appendFloat64s(scratch[:0], values[i:min(i+chunkValues, len(values))])
		crc = hash.UpdateCRC32C(crc, scratch)
	}
	if crc != h.Checksum {
		return nil, ErrChecksumMismatch
	}
	return rows(h, append([]float64(nil), values...)), nil
}

func rows(h Header, values []float64) [][]float64 {
	out := make([][]float64, h.Rows)
	if h.Cols == 0 {
		for i := range out {
			out[i] = []float64{}
		}
		return out
	}
	cols := int(h.Cols)
	for i := range out {
		out[i] = values[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return out
}

func appendFloat64s(dst []byte, values []float64) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	}
	return dst
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type flushWriter interface {
	io.Writer
	Flush() error
}

func write(w io.Writer, h Header, chunks [][]float64) (int64, error) {
	if !h.Compression.valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(h.Compression))
	}

	var scratch []byte
	each := func(fn func([]byte) error) error {
		for _, chunk := range chunks {
			for i := 0; i < len(chunk); i += chunkValues {
				scratch = appendFloat64s(scratch[:0], chunk[i:min(i+chunkValues, len(chunk))])
				if err := fn(scratch); err != nil {
					return err
				}
			}
		}
		return nil
	}

	crc := hash.NewCRC32C()
	_ = each(func(b []byte) error {
		_, err := crc.Write(b)
		return err
	})
	h.Checksum = crc.Sum32()

	cw := &countingWriter{w: w}
	hdr := h.encode()
	if _, err := cw.Write(hdr[:]); err != nil {
		return cw.n, err
	}

	var pw flushWriter
	if h.Compression == CompressionNone {
		pw = bufio.NewWriterSize(cw, 64*1024)
	} else {
		pw = newBlockWriter(cw, h.Compression, DefaultBlockSize)
	}
	if err := each(func(b []byte) error {
		_, err := pw.Write(b)
		return err
	}); err != nil {
		return cw.n, err
	}
	if err := pw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func read(r io.Reader, kind Kind) (Header, []float64, error) {
	var hb [HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return Header{}, nil, err
	}
	h, err := ParseHeader(hb[:])
	if err != nil {
		return Header{}, nil, err
	}
	if h.Kind != kind {
		return Header{}, nil, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, h.Kind, kind)
	}
	n, err := h.Values()
	if err != nil {
		return Header{}, nil, err
	}

	var pr io.Reader = r
	if h.Compression != CompressionNone {
		pr = newBlockReader(r, h.Compression)
	}

	values := make([]float64, 0, min(n, chunkValues))
	buf := make([]byte, 8*chunkValues)
	crc := hash.NewCRC32C()
	for remaining := n; remaining > 0; {
		chunk := buf[:8*min(remaining, chunkValues)]
		if _, err := io.ReadFull(pr, chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Header{}, nil, fmt.Errorf("%w: payload ends %d values early", ErrCorrupt, remaining)
			}
			return Header{}, nil, err
		}
		_, _ = crc.Write(chunk)
		for i := 0; i < len(chunk); i += 8 {
			values = append(values, math.Float64frombits(binary.LittleEndian.Uint64(chunk[i:])))
		}
		remaining -= len(chunk) / 8
	}
	if crc.Sum32() != h.Checksum {
		return Header{}, nil, ErrChecksumMismatch
	}
	return h, values, nil
}
