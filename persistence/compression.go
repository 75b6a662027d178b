package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload block codec.
type Compression uint8

const (
	// CompressionNone stores the payload raw, which keeps it mappable.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD trades speed for a better ratio.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

// ParseCompression maps "none", "lz4" or "zstd" (any case) to a
// Compression. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// DefaultBlockSize is the uncompressed size of a payload block.
const DefaultBlockSize = 256 * 1024

const blockHeaderSize = 8

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// appendBlock appends one framed block holding data to dst. Blocks that do
// not shrink below 90% are stored uncompressed (compressed size 0).
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		dst = append(dst, hdr[:]...)
		return append(dst, data...), nil
	}
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed)))
	dst = append(dst, hdr[:]...)
	return append(dst, compressed...), nil
}

func decompressBlock(dst, compressed []byte, size int, c Compression) ([]byte, error) {
	switch c {
	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: block decompressed to %d of %d bytes", ErrCorrupt, n, size)
		}
		return append(dst, out...), nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		start := len(dst)
		out, err := dec.DecodeAll(compressed, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if len(out)-start != size {
			return nil, fmt.Errorf("%w: block decompressed to %d of %d bytes", ErrCorrupt, len(out)-start, size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}

// blockWriter buffers payload bytes and emits framed compressed blocks.
type blockWriter struct {
	w         io.Writer
	c         Compression
	blockSize int
	buf       []byte
	out       []byte
}

func newBlockWriter(w io.Writer, c Compression, blockSize int) *blockWriter {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &blockWriter{w: w, c: c, blockSize: blockSize, buf: make([]byte, 0, blockSize)}
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if len(b.buf) == b.blockSize {
			if err := b.Flush(); err != nil {
				return total, err
			}
		}
		n := min(len(p), b.blockSize-len(b.buf))
		b.buf = append(b.buf, p[:n]...)
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush writes the buffered bytes as one block.
func (b *blockWriter) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	out, err := appendBlock(b.out[:0], b.buf, b.c)
	if err != nil {
		return err
	}
	b.out = out
	if _, err := b.w.Write(out); err != nil {
		return err
	}
	b.buf = b.buf[:0]
	return nil
}

// blockReader decompresses framed blocks on demand.
type blockReader struct {
	r   io.Reader
	c   Compression
	in  []byte
	out []byte
	cur []byte
	pos int
}

func newBlockReader(r io.Reader, c Compression) *blockReader {
	return &blockReader{r: r, c: c}
}

func (b *blockReader) Read(p []byte) (int, error) {
	for b.pos == len(b.cur) {
		if err := b.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.cur[b.pos:])
	b.pos += n
	return n, nil
}

func (b *blockReader) next() error {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(b.r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated block header", ErrCorrupt)
		}
		return err
	}
	size := int(binary.LittleEndian.Uint32(hdr[0:]))
	stored := int(binary.LittleEndian.Uint32(hdr[4:]))

	n := stored
	if stored == 0 {
		n = size
	}
	if cap(b.in) < n {
		b.in = make([]byte, n)
	}
	b.in = b.in[:n]
	if _, err := io.ReadFull(b.r, b.in); err != nil {
		return fmt.Errorf("%w: truncated block: %v", ErrCorrupt, err)
	}

	b.pos = 0
	if stored == 0 {
		b.cur = b.in
		return nil
	}
	out, err := decompressBlock(b.out[:0], b.in, size, b.c)
	if err != nil {
		return err
	}
	b.out = out
	b.cur = out
	return nil
}
