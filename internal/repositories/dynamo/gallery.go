package dynamo

import (
	"context"
	"strings"
	"time"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

const galleryKey = "galleryCode"

// GalleryRepository implements repositories.GalleryRepository on DynamoDB
type GalleryRepository struct {
	table
}

// NewGalleryRepository creates a gallery repository over tableName
func NewGalleryRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *GalleryRepository {
	return &GalleryRepository{table{client: client, name: tableName, entity: "gallery", logger: logger}}
}

// Create stores a gallery unless its code is already taken
func (r *GalleryRepository) Create(ctx context.Context, g *models.Gallery) error {
	if err := g.Validate(); err != nil {
		return repositories.ValidationError("gallery", g.GalleryCode, err)
	}

	item, err := attributevalue.MarshalMap(newGalleryItem(g))
	if err != nil {
		return r.wrap("create", g.GalleryCode, err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(galleryKey))).
		Build()
	if err != nil {
		return r.wrap("create", g.GalleryCode, err)
	}

	start := time.Now()
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.name),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	r.logCall("create", start, err)

	if err != nil {
		if isConditionFailed(err) {
			return repositories.DuplicateError("gallery", galleryKey, g.GalleryCode)
		}
		return r.wrap("create", g.GalleryCode, err)
	}
	return nil
}

// GetByCode retrieves a gallery by code with a consistent read
func (r *GalleryRepository) GetByCode(ctx context.Context, code string) (*models.Gallery, error) {
	if strings.TrimSpace(code) == "" {
		return nil, r.wrap("get", code, repositories.ErrInvalidID)
	}

	start := time.Now()
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.name),
		Key:            stringKey(galleryKey, code),
		ConsistentRead: aws.Bool(true),
	})
	r.logCall("get", start, err)

	if err != nil {
		return nil, r.wrap("get", code, err)
	}
	if out.Item == nil {
		return nil, repositories.NotFoundError("gallery", code)
	}

	var item galleryItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, r.wrap("get", code, err)
	}
	return item.model(), nil
}

// Delete removes an existing gallery record
func (r *GalleryRepository) Delete(ctx context.Context, code string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name(galleryKey))).
		Build()
	if err != nil {
		return r.wrap("delete", code, err)
	}

	start := time.Now()
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.name),
		Key:                       stringKey(galleryKey, code),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	r.logCall("delete", start, err)

	if err != nil {
		if isConditionFailed(err) {
			return repositories.NotFoundError("gallery", code)
		}
		return r.wrap("delete", code, err)
	}
	return nil
}

// ListCreatedBefore scans for galleries whose createdAt precedes cutoff
func (r *GalleryRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Gallery, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("createdAt").LessThan(expression.Value(formatTime(cutoff)))).
		Build()
	if err != nil {
		return nil, r.wrap("list_created_before", "", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.name),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var galleries []*models.Gallery
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		r.logCall("list_created_before", start, err)
		if err != nil {
			return nil, r.wrap("list_created_before", "", err)
		}

		var items []galleryItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, r.wrap("list_created_before", "", err)
		}
		for _, item := range items {
			galleries = append(galleries, item.model())
		}
	}

	return galleries, nil
}

// AddImages adds delta to the stored image count
func (r *GalleryRepository) AddImages(ctx context.Context, code string, delta int) error {
	update := expression.Set(
		expression.Name("imageCount"),
		expression.Name("imageCount").Plus(expression.Value(delta)),
	)
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(galleryKey))).
		Build()
	if err != nil {
		return r.wrap("add_images", code, err)
	}

	start := time.Now()
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.name),
		Key:                       stringKey(galleryKey, code),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	r.logCall("add_images", start, err)

	if err != nil {
		if isConditionFailed(err) {
			return repositories.NotFoundError("gallery", code)
		}
		return r.wrap("add_images", code, err)
	}
	return nil
}
