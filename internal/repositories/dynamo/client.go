// Package dynamo implements the repositories on Amazon DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gallery-delivery-api/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// DynamoDBAPI is the subset of the DynamoDB client the repositories call
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// Tables names the DynamoDB tables backing each repository
type Tables struct {
	Galleries string
	Images    string
	Contacts  string
	Curation  string
}

// batchWriteLimit is the maximum number of requests in one BatchWriteItem call
const batchWriteLimit = 25

const maxUnprocessedRetries = 5

// table carries what every repository needs to talk to one table
type table struct {
	client DynamoDBAPI
	name   string
	entity string
	logger *logrus.Logger
}

func (t table) logCall(operation string, start time.Time, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     t.name,
		"duration":  time.Since(start),
	}

	if err != nil {
		fields["error"] = err.Error()
		t.logger.WithFields(fields).Error("DynamoDB call failed")
	} else {
		t.logger.WithFields(fields).Debug("DynamoDB call completed")
	}
}

func (t table) wrap(operation, id string, err error) error {
	return repositories.NewRepositoryError(operation, t.entity, id, err)
}

// batchDelete deletes keys in batches, retrying unprocessed requests with backoff
func (t table) batchDelete(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(keys) {
			end = len(keys)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
		}

		pending := map[string][]types.WriteRequest{t.name: requests}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > maxUnprocessedRetries {
				remaining := 0
				for _, reqs := range pending {
					remaining += len(reqs)
				}
				msg := fmt.Sprintf("%d %s delete requests unprocessed after %d retries", remaining, t.entity, maxUnprocessedRetries)
				return repositories.NewRepositoryErrorWithMessage("batch_delete", t.entity, "", msg, repositories.ErrConnection)
			}
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt*50) * time.Millisecond):
				}
			}

			out, err := t.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return err
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

func isConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func compositeKey(pkName, pk, skName, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pk},
		skName: &types.AttributeValueMemberS{Value: sk},
	}
}

