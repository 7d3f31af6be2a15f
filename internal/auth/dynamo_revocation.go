package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultRevocationTable = "revoked_tokens"

// DynamoAPI is the subset of the DynamoDB client used for revocation.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

type revokedTokenItem struct {
	TokenID   string `dynamodbav:"jti"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// DynamoRevocationList persists revoked token ids in DynamoDB so revocation
// survives restarts. expires_at doubles as the table's TTL attribute.
//
// Table requirements:
//   - PK: jti (string)
//   - TTL: expires_at (epoch seconds)
type DynamoRevocationList struct {
	ddb       DynamoAPI
	tableName string
	now       func() time.Time
}

var _ Revoker = (*DynamoRevocationList)(nil)

func NewDynamoRevocationList(ddb DynamoAPI, tableName string) *DynamoRevocationList {
	if tableName == "" {
		tableName = defaultRevocationTable
	}
	return &DynamoRevocationList{ddb: ddb, tableName: tableName, now: time.Now}
}

func (r *DynamoRevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	av, err := attributevalue.MarshalMap(revokedTokenItem{TokenID: tokenID, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put revoked token: %w", err)
	}
	return nil
}

func (r *DynamoRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"jti": &types.AttributeValueMemberS{Value: tokenID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("get revoked token: %w", err)
	}
	if len(out.Item) == 0 {
		return false, nil
	}

	var it revokedTokenItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return false, err
	}
	// TTL deletion lags, so expired items may still be present.
	return r.now().Unix() < it.ExpiresAt, nil
}

// EnsureTable creates the table with TTL enabled when it does not exist.
func (r *DynamoRevocationList) EnsureTable(ctx context.Context) error {
	_, err := r.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe %s: %w", r.tableName, err)
	}

	_, err = r.ddb.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("jti"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("jti"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", r.tableName, err)
	}
	waiter := dynamodb.NewTableExistsWaiter(r.ddb)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for %s: %w", r.tableName, err)
	}

	_, err = r.ddb.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(r.tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String("expires_at"),
			Enabled:       aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("enable ttl on %s: %w", r.tableName, err)
	}
	return nil
}
