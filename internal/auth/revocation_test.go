package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	list := NewMemoryRevocationList()
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, list.Revoke(ctx, "b", now.Add(2*time.Hour)))

	revoked, err := list.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = list.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)

	now = now.Add(90 * time.Minute)
	revoked, _ = list.IsRevoked(ctx, "a")
	assert.False(t, revoked, "entry outlived its token")
	assert.Equal(t, 1, list.Len())

	now = now.Add(time.Hour)
	assert.Equal(t, 1, list.Sweep())
	assert.Equal(t, 0, list.Len())
}

func TestMemoryRevocationList_Run(t *testing.T) {
	list := NewMemoryRevocationList()
	require.NoError(t, list.Revoke(context.Background(), "old", time.Now().Add(-time.Second)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		list.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return list.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

type fakeDynamo struct {
	items   map[string]map[string]types.AttributeValue
	tables  map[string]bool
	ttlAttr string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}, tables: map[string]bool{}}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	id := in.Item["jti"].(*types.AttributeValueMemberS).Value
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := in.Key["jti"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if !f.tables[*in.TableName] {
		return nil, &types.ResourceNotFoundException{}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.tables[*in.TableName] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) UpdateTimeToLive(_ context.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	f.ttlAttr = *in.TimeToLiveSpecification.AttributeName
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func TestDynamoRevocationList(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDynamo()
	now := time.Unix(1_700_000_000, 0)
	list := NewDynamoRevocationList(ddb, "")
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(ctx, "jti-1", now.Add(time.Hour)))

	var stored revokedTokenItem
	require.NoError(t, attributevalue.UnmarshalMap(ddb.items["jti-1"], &stored))
	assert.Equal(t, now.Add(time.Hour).Unix(), stored.ExpiresAt)

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// An expired item not yet removed by TTL no longer counts.
	now = now.Add(2 * time.Hour)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDynamoRevocationList_EnsureTable(t *testing.T) {
	ddb := newFakeDynamo()
	list := NewDynamoRevocationList(ddb, "revoked")

	require.NoError(t, list.EnsureTable(context.Background()))
	assert.True(t, ddb.tables["revoked"])
	assert.Equal(t, "expires_at", ddb.ttlAttr)

	// Second call finds the table and does nothing.
	ddb.ttlAttr = ""
	require.NoError(t, list.EnsureTable(context.Background()))
	assert.Empty(t, ddb.ttlAttr)
}

type failingDynamo struct{ fakeDynamo }

func (failingDynamo) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return nil, errors.New("unreachable")
}

func TestService_ValidateToken_RevokerFailure(t *testing.T) {
	service := NewService(testSecret, time.Hour, NewDynamoRevocationList(&failingDynamo{}, ""))
	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(context.Background(), token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}
