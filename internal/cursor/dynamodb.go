package cursor

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	dynamoKeyAttr    = "id"
	dynamoCursorAttr = "cursor"
)

type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBStore keeps one item per key in a table whose hash key is "id",
// with the cursor in a "cursor" string attribute.
type DynamoDBStore struct {
	client dynamoAPI
	table  string
}

func NewDynamoDBStore(client dynamoAPI, table string) *DynamoDBStore {
	return &DynamoDBStore{client: client, table: table}
}

func (s *DynamoDBStore) Get(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			dynamoKeyAttr: &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("reading cursor: %w", err)
	}
	if len(out.Item) == 0 {
		return "", ErrNotFound
	}

	attr, ok := out.Item[dynamoCursorAttr].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("reading cursor: item %q has no string %q attribute", key, dynamoCursorAttr)
	}
	return attr.Value, nil
}

func (s *DynamoDBStore) Put(ctx context.Context, key, value string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			dynamoKeyAttr:    &types.AttributeValueMemberS{Value: key},
			dynamoCursorAttr: &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	return nil
}
