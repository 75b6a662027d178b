// Package hash provides the checksums used by kdego's on-disk formats.
//
// Every persisted matrix and density block carries a CRC32-Castagnoli
// (CRC32C) checksum of its uncompressed payload. The standard library
// selects the hardware implementation (SSE4.2, ARM CRC) when available.
//
//	sum := hash.CRC32C(payload)
//
//	h := hash.NewCRC32C()
//	h.Write(block1)
//	h.Write(block2)
//	sum = h.Sum32()
package hash
