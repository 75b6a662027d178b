package s3

import (
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdego/blobstore"
)

func TestIntegration_Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}

	ctx := t.Context()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	prefix := fmt.Sprintf("kdego-test-%d/", time.Now().UnixNano())
	store := NewStore(awss3.NewFromConfig(cfg), bucket, prefix)

	data := make([]byte, 1024*1024)
	_, _ = rand.Read(data)
	require.NoError(t, store.Put(ctx, "densities.kdeg", data))
	defer func() { _ = store.Delete(ctx, "densities.kdeg") }()

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "densities.kdeg")

	blob, err := store.Open(ctx, "densities.kdeg")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 100)
	n, err := blob.ReadAt(ctx, buf, 1024)
	require.NoError(t, err)
	assert.Equal(t, data[1024:1024+n], buf[:n])

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		commits := NewCommitStore(store, dynamodb.NewFromConfig(cfg), table, "s3://"+bucket+"/"+prefix)
		require.NoError(t, commits.Put(ctx, blobstore.CurrentName, []byte("densities.kdeg")))
		_, target, err := commits.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "densities.kdeg", target)
	}
}
