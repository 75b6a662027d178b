// Package minio stores kdego datasets and results in MinIO or another
// S3-compatible service (Ceph, SeaweedFS, Garage) through the MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil { ... }
//	store := minioblob.NewStore(client, "kde", "nightly/")
//
// It needs no AWS SDK, which suits air-gapped deployments.
package minio
