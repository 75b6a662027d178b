package minio

import (
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdego/blobstore"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestStore_Integration needs a running MinIO (MINIO_ENDPOINT, default
// localhost:9000) and skips otherwise.
func TestStore_Integration(t *testing.T) {
	ctx := t.Context()
	bucket := "kdego-test"

	client, err := minio.New(getenv("MINIO_ENDPOINT", "localhost:9000"), &minio.Options{
		Creds:  credentials.NewStaticV4(getenv("MINIO_ACCESS_KEY", "minioadmin"), getenv("MINIO_SECRET_KEY", "minioadmin"), ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("minio client: %v", err)
	}
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("minio not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio densities")
	require.NoError(t, store.Put(ctx, "run/densities.kdeg", data))

	blob, err := store.Open(ctx, "run/densities.kdeg")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))

	all, err := io.ReadAll(blobstore.NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, all)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "run/")
	require.NoError(t, err)
	assert.Equal(t, []string{"run/densities.kdeg"}, names)

	require.NoError(t, store.Delete(ctx, "run/densities.kdeg"))
	_, err = store.Open(ctx, "run/densities.kdeg")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	require.NoError(t, store.Delete(ctx, "run/densities.kdeg"))
}
