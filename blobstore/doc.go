// Package blobstore stores persisted datasets and density results.
//
// A Store maps names to immutable blobs:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Built-in implementations:
//
//   - LocalStore: files below a directory, opened through memory mapping
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with ranged reads and multipart uploads
//   - s3.CommitStore: any Store plus DynamoDB conditional writes for CURRENT
//   - minio.Store: MinIO and other S3-compatible services
//
// Local blobs implement Mappable and Float64Viewer so uncompressed
// matrices decode without intermediate copies.
package blobstore
