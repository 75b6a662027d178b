package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// Magic identifies kdego files.
	Magic = "KDEG"
	// Version is the current format version.
	Version uint16 = 1
	// HeaderSize is the encoded header length and the payload offset.
	HeaderSize = 32
)

var (
	ErrInvalidMagic       = errors.New("persistence: invalid magic")
	ErrUnsupportedVersion = errors.New("persistence: unsupported version")
	ErrKindMismatch       = errors.New("persistence: unexpected payload kind")
	ErrChecksumMismatch   = errors.New("persistence: checksum mismatch")
	ErrCorrupt            = errors.New("persistence: corrupt payload")
	ErrRagged             = errors.New("persistence: rows differ in length")
	ErrUnknownCompression = errors.New("persistence: unknown compression")
)

// Kind tells what a file holds.
type Kind uint8

const (
	KindMatrix    Kind = 1
	KindDensities Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindMatrix:
		return "matrix"
	case KindDensities:
		return "densities"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Header is the decoded file header.
type Header struct {
	Version     uint16
	Kind        Kind
	Compression Compression
	Rows        uint64
	Cols        uint64
	Checksum    uint32
}

// Values returns rows*cols, or an error if the product cannot be addressed.
func (h Header) Values() (int, error) {
	if h.Cols == 0 {
		if h.Rows > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %d empty rows", ErrCorrupt, h.Rows)
		}
		return 0, nil
	}
	if h.Rows > math.MaxInt/8/h.Cols {
		return 0, fmt.Errorf("%w: %d x %d values", ErrCorrupt, h.Rows, h.Cols)
	}
	return int(h.Rows * h.Cols), nil
}

func (h Header) encode() [HeaderSize]byte {
	var b [HeaderSize]byte
	copy(b[0:4], Magic)
	binary.LittleEndian.PutUint16(b[4:], h.Version)
	b[6] = byte(h.Kind)
	b[7] = byte(h.Compression)
	binary.LittleEndian.PutUint64(b[8:], h.Rows)
	binary.LittleEndian.PutUint64(b[16:], h.Cols)
	binary.LittleEndian.PutUint32(b[24:], h.Checksum)
	return b
}

// ParseHeader decodes and validates the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes", ErrCorrupt, len(b))
	}
	if string(b[0:4]) != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidMagic, b[0:4])
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(b[4:]),
		Kind:        Kind(b[6]),
		Compression: Compression(b[7]),
		Rows:        binary.LittleEndian.Uint64(b[8:]),
		Cols:        binary.LittleEndian.Uint64(b[16:]),
		Checksum:    binary.LittleEndian.Uint32(b[24:]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Compression.valid() {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(h.Compression))
	}
	if _, err := h.Values(); err != nil {
		return Header{}, err
	}
	return h, nil
}
