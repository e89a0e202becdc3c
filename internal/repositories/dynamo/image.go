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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

const imageSortKey = "imageId"

// ImageRepository implements repositories.ImageRepository on DynamoDB.
// The table is keyed by galleryCode (partition) and imageId (sort).
type ImageRepository struct {
	table
}

// NewImageRepository creates an image repository over tableName
func NewImageRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *ImageRepository {
	return &ImageRepository{table{client: client, name: tableName, entity: "image", logger: logger}}
}

// Create stores an image record
func (r *ImageRepository) Create(ctx context.Context, img *models.Image) error {
	if err := img.Validate(); err != nil {
		return repositories.ValidationError("image", img.ImageID, err)
	}

	item, err := attributevalue.MarshalMap(newImageItem(img))
	if err != nil {
		return r.wrap("create", img.ImageID, err)
	}

	start := time.Now()
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.name),
		Item:      item,
	})
	r.logCall("create", start, err)

	if err != nil {
		return r.wrap("create", img.ImageID, err)
	}
	return nil
}

// ListByGallery queries every image of a gallery
func (r *ImageRepository) ListByGallery(ctx context.Context, galleryCode string) ([]*models.Image, error) {
	items, err := r.query(ctx, "list_by_gallery", galleryCode, false)
	if err != nil {
		return nil, err
	}

	var records []imageItem
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, r.wrap("list_by_gallery", galleryCode, err)
	}

	images := make([]*models.Image, 0, len(records))
	for _, rec := range records {
		images = append(images, rec.model())
	}
	return images, nil
}

// DeleteByGallery deletes every image record of a gallery in batches
func (r *ImageRepository) DeleteByGallery(ctx context.Context, galleryCode string) (int, error) {
	items, err := r.query(ctx, "delete_by_gallery", galleryCode, true)
	if err != nil {
		return 0, err
	}

	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		keys = append(keys, map[string]types.AttributeValue{
			galleryKey:   item[galleryKey],
			imageSortKey: item[imageSortKey],
		})
	}

	start := time.Now()
	err = r.batchDelete(ctx, keys)
	r.logCall("delete_by_gallery", start, err)
	if err != nil {
		return 0, r.wrap("delete_by_gallery", galleryCode, err)
	}

	return len(keys), nil
}

func (r *ImageRepository) query(ctx context.Context, operation, galleryCode string, keysOnly bool) ([]map[string]types.AttributeValue, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(galleryKey).Equal(expression.Value(galleryCode)))
	if keysOnly {
		builder = builder.WithProjection(expression.NamesList(expression.Name(galleryKey), expression.Name(imageSortKey)))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, r.wrap(operation, galleryCode, err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.name),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.logCall(operation, start, err)
		if err != nil {
			return nil, r.wrap(operation, galleryCode, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
