package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/kdego/blobstore"
)

// ErrConcurrentModification is returned when another writer committed the
// same CURRENT version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification")

// DynamoDBClient is the subset of *dynamodb.Client the commit store uses.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DynamoDBClient = (*dynamodb.Client)(nil)

// CommitStore wraps a Store and keeps the CURRENT pointer in DynamoDB.
// Every Put of blobstore.CurrentName appends version n+1 with a conditional
// write, so two writers racing for the same version cannot both win.
//
// Table schema: partition key base_uri (S), sort key version (N).
//
//	aws dynamodb create-table \
//	  --table-name kdego-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	blobstore.Store
	ddb     DynamoDBClient
	table   string
	baseURI string
}

var _ blobstore.Store = (*CommitStore)(nil)

// NewCommitStore returns a commit store. baseURI partitions the table, so
// several stores can share it.
func NewCommitStore(inner blobstore.Store, ddb DynamoDBClient, table, baseURI string) *CommitStore {
	return &CommitStore{Store: inner, ddb: ddb, table: table, baseURI: baseURI}
}

// Open serves CURRENT from the latest committed version.
func (s *CommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != blobstore.CurrentName {
		return s.Store.Open(ctx, name)
	}
	version, target, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return blobstore.NewBytesBlob([]byte(target)), nil
}

// Put commits CURRENT through DynamoDB and forwards other blobs.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != blobstore.CurrentName {
		return s.Store.Put(ctx, name, data)
	}
	version, _, err := s.Latest(ctx)
	if err != nil {
		return err
	}
	return s.commit(ctx, version+1, string(data))
}

// Latest returns the newest committed version and its target; version 0
// means nothing was committed yet.
func (s *CommitStore) Latest(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":uri": &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query commits: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: commit item without numeric version")
	}
	targetAttr, ok := item["target"].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: commit item without target")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: parse commit version: %w", err)
	}
	return version, targetAttr.Value, nil
}

func (s *CommitStore) commit(ctx context.Context, version uint64, target string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]ddbtypes.AttributeValue{
			"base_uri": &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
			"version":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"target":   &ddbtypes.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var cond *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("s3: commit version %d: %w", version, err)
	}
	return nil
}
