package s3

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdego/blobstore"
)

// fakeDynamoDB is an in-memory table keyed by base_uri and version.
type fakeDynamoDB struct {
	mu    sync.Mutex
	items map[string]map[uint64]map[string]ddbtypes.AttributeValue
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[uint64]map[string]ddbtypes.AttributeValue)}
}

func (f *fakeDynamoDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := params.Item["base_uri"].(*ddbtypes.AttributeValueMemberS).Value
	version, err := strconv.ParseUint(params.Item["version"].(*ddbtypes.AttributeValueMemberN).Value, 10, 64)
	if err != nil {
		return nil, err
	}
	if f.items[uri] == nil {
		f.items[uri] = make(map[uint64]map[string]ddbtypes.AttributeValue)
	}
	if _, exists := f.items[uri][version]; exists && aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	f.items[uri][version] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := params.ExpressionAttributeValues[":uri"].(*ddbtypes.AttributeValueMemberS).Value
	var latest uint64
	for v := range f.items[uri] {
		latest = max(latest, v)
	}
	if latest == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	return &dynamodb.QueryOutput{Items: []map[string]ddbtypes.AttributeValue{f.items[uri][latest]}}, nil
}

func readCurrent(t *testing.T, store blobstore.Store) string {
	t.Helper()
	blob, err := store.Open(t.Context(), blobstore.CurrentName)
	require.NoError(t, err)
	defer blob.Close()
	data, err := io.ReadAll(blobstore.NewReader(t.Context(), blob))
	require.NoError(t, err)
	return string(data)
}

func TestCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := NewCommitStore(blobstore.NewMemoryStore(), newFakeDynamoDB(), "commits", "s3://b/kde")
	_, err := store.Open(t.Context(), blobstore.CurrentName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCommitStore_Commits(t *testing.T) {
	ctx := t.Context()
	inner := blobstore.NewMemoryStore()
	store := NewCommitStore(inner, newFakeDynamoDB(), "commits", "s3://b/kde")

	require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("run-1")))
	assert.Equal(t, "run-1", readCurrent(t, store))

	require.NoError(t, store.Put(ctx, blobstore.CurrentName, []byte("run-2")))
	assert.Equal(t, "run-2", readCurrent(t, store))

	version, target, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, "run-2", target)

	// CURRENT never reaches the wrapped store; other blobs do.
	_, err = inner.Open(ctx, blobstore.CurrentName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	require.NoError(t, store.Put(ctx, "run-2/manifest.json", []byte("{}")))
	names, err := inner.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-2/manifest.json"}, names)
}

func TestCommitStore_LostRace(t *testing.T) {
	ctx := t.Context()
	store := NewCommitStore(blobstore.NewMemoryStore(), newFakeDynamoDB(), "commits", "s3://b/kde")

	require.NoError(t, store.commit(ctx, 1, "writer-a"))
	assert.ErrorIs(t, store.commit(ctx, 1, "writer-b"), ErrConcurrentModification)
	assert.Equal(t, "writer-a", readCurrent(t, store))
}

func TestCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := t.Context()
	ddb := newFakeDynamoDB()
	a := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://b/a")
	b := NewCommitStore(blobstore.NewMemoryStore(), ddb, "commits", "s3://b/b")

	require.NoError(t, a.Put(ctx, blobstore.CurrentName, []byte("a-1")))
	_, err := b.Open(ctx, blobstore.CurrentName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, b.Put(ctx, blobstore.CurrentName, []byte("b-1")))
	assert.Equal(t, "a-1", readCurrent(t, a))
	assert.Equal(t, "b-1", readCurrent(t, b))
}
