// Package persistence implements kdego's binary format for point matrices
// and density vectors.
//
// Every file starts with a 32-byte little-endian header:
//
//	offset  size  field
//	0       4     magic "KDEG"
//	4       2     format version
//	6       1     kind (1 = matrix, 2 = densities)
//	7       1     compression (0 = none, 1 = lz4, 2 = zstd)
//	8       8     rows
//	16      8     columns (1 for densities)
//	24      4     CRC32C of the uncompressed payload
//	28      4     reserved
//
// The payload is rows*cols little-endian float64 values in row-major
// order. Uncompressed payloads start 8-byte aligned so a memory-mapped file
// can be viewed in place. Compressed payloads are a sequence of blocks,
// each prefixed by its uncompressed and compressed sizes; a block that does
// not shrink is stored as is.
package persistence
