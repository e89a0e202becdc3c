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

// ContactRepository implements repositories.ContactRepository on DynamoDB
type ContactRepository struct {
	table
}

// NewContactRepository creates a contact repository over tableName
func NewContactRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *ContactRepository {
	return &ContactRepository{table{client: client, name: tableName, entity: "contact", logger: logger}}
}

// Create stores a contact submission
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if err := c.Validate(); err != nil {
		return repositories.ValidationError("contact", c.ID, err)
	}

	item, err := attributevalue.MarshalMap(contactItem(*c))
	if err != nil {
		return r.wrap("create", c.ID, err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return r.wrap("create", c.ID, err)
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
			return repositories.DuplicateError("contact", "id", c.ID)
		}
		return r.wrap("create", c.ID, err)
	}
	return nil
}

// GetByID retrieves a contact submission
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	start := time.Now()
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.name),
		Key:       stringKey("id", id),
	})
	r.logCall("get", start, err)

	if err != nil {
		return nil, r.wrap("get", id, err)
	}
	if out.Item == nil {
		return nil, repositories.NotFoundError("contact", id)
	}

	var item contactItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, r.wrap("get", id, err)
	}

	c := models.Contact(item)
	return &c, nil
}
