package dynamo

import (
	"context"
	"time"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

// CurationRepository implements repositories.CurationRepository on DynamoDB.
// The table is keyed by galleryId and recordId, with expiresAt as its TTL attribute.
type CurationRepository struct {
	table
}

// NewCurationRepository creates a curation repository over tableName
func NewCurationRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *CurationRepository {
	return &CurationRepository{table{client: client, name: tableName, entity: "curation", logger: logger}}
}

// Record stores one curation effect
func (r *CurationRepository) Record(ctx context.Context, rec *models.CurationRecord) error {
	if err := rec.Validate(); err != nil {
		return repositories.ValidationError("curation", rec.RecordID, err)
	}

	item, err := attributevalue.MarshalMap(curationItem(*rec))
	if err != nil {
		return r.wrap("record", rec.RecordID, err)
	}

	start := time.Now()
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.name),
		Item:      item,
	})
	r.logCall("record", start, err)

	if err != nil {
		return r.wrap("record", rec.RecordID, err)
	}
	return nil
}

// ListByGallery returns a gallery's records in sort key order
func (r *CurationRepository) ListByGallery(ctx context.Context, galleryID string) ([]*models.CurationRecord, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("galleryId").Equal(expression.Value(galleryID))).
		Build()
	if err != nil {
		return nil, r.wrap("list_by_gallery", galleryID, err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	records := make([]*models.CurationRecord, 0)
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.logCall("list_by_gallery", start, err)
		if err != nil {
			return nil, r.wrap("list_by_gallery", galleryID, err)
		}

		var items []curationItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, r.wrap("list_by_gallery", galleryID, err)
		}
		for _, item := range items {
			rec := models.CurationRecord(item)
			records = append(records, &rec)
		}
	}

	return records, nil
}
