package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Check value from RFC 3720, appendix B.4.
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
}

func TestCRC32C_Streaming(t *testing.T) {
	data := []byte("kernel density estimation")

	h := NewCRC32C()
	_, _ = h.Write(data[:7])
	_, _ = h.Write(data[7:])
	assert.Equal(t, CRC32C(data), h.Sum32())

	assert.Equal(t, CRC32C(data), UpdateCRC32C(CRC32C(data[:10]), data[10:]))
}
