// Package s3 stores kdego datasets and results in Amazon S3.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "kde/")
//
//	// Optional: make CURRENT updates atomic across writers.
//	commits := s3.NewCommitStore(store, dynamodb.NewFromConfig(cfg), "kdego-commits", "s3://my-bucket/kde")
//
// Reads use ranged GetObject requests, writes go through the multipart
// uploader with CRC32C checksums, and listing follows pagination.
package s3
