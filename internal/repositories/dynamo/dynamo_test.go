package dynamo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/internal/repositories"
	"gallery-delivery-api/internal/repositories/repotest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	Galleries: "galleries",
	Images:    "images",
	Contacts:  "contacts",
	Curation:  "curation",
}

// fakeDynamo understands the handful of expression shapes the repositories build
type fakeDynamo struct {
	mu              sync.Mutex
	keys            map[string][]string
	items           map[string]map[string]map[string]types.AttributeValue
	unprocessedOnce bool
	throttleBatches bool
	batchCalls      int
	describeErr     error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keys: map[string][]string{
			testTables.Galleries: {"galleryCode"},
			testTables.Images:    {"galleryCode", "imageId"},
			testTables.Contacts:  {"id"},
			testTables.Curation:  {"galleryId", "recordId"},
		},
		items: make(map[string]map[string]map[string]types.AttributeValue),
	}
}

var _ DynamoDBAPI = (*fakeDynamo)(nil)

var (
	comparePattern = regexp.MustCompile(`(#\w+)\s*(=|<)\s*(:\w+)`)
	plusPattern    = regexp.MustCompile(`(#\w+)\s*=\s*#\w+\s*\+\s*(:\w+)`)
)

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) string {
	var parts []string
	for _, name := range f.keys[table] {
		if s, ok := item[name].(*types.AttributeValueMemberS); ok {
			parts = append(parts, s.Value)
		}
	}
	return strings.Join(parts, "|")
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.items[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.items[name] = t
	}
	return t
}

func checkCondition(cond *string, exists bool) error {
	if cond == nil {
		return nil
	}
	if strings.Contains(*cond, "attribute_not_exists") && exists {
		return conditionFailed()
	}
	if strings.Contains(*cond, "attribute_exists") && !exists {
		return conditionFailed()
	}
	return nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.table(*in.TableName)[f.keyOf(*in.TableName, in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.table(*in.TableName)
	key := f.keyOf(*in.TableName, in.Item)
	_, exists := t[key]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	t[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.table(*in.TableName)
	key := f.keyOf(*in.TableName, in.Key)
	_, exists := t[key]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	delete(t, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.table(*in.TableName)
	key := f.keyOf(*in.TableName, in.Key)
	item, exists := t[key]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}

	m := plusPattern.FindStringSubmatch(*in.UpdateExpression)
	if m == nil {
		return nil, fmt.Errorf("unsupported update expression %q", *in.UpdateExpression)
	}
	attr := in.ExpressionAttributeNames[m[1]]
	delta, _ := strconv.Atoi(in.ExpressionAttributeValues[m[2]].(*types.AttributeValueMemberN).Value)

	current := 0
	if n, ok := item[attr].(*types.AttributeValueMemberN); ok {
		current, _ = strconv.Atoi(n.Value)
	}
	item[attr] = &types.AttributeValueMemberN{Value: strconv.Itoa(current + delta)}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) matching(table string, expr *string, names map[string]string, values map[string]types.AttributeValue) []map[string]types.AttributeValue {
	m := comparePattern.FindStringSubmatch(aws.ToString(expr))
	var out []map[string]types.AttributeValue
	for _, item := range f.table(table) {
		if m == nil {
			out = append(out, item)
			continue
		}
		got, ok := item[names[m[1]]].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		want := values[m[3]].(*types.AttributeValueMemberS).Value
		if (m[2] == "=" && got.Value == want) || (m[2] == "<" && got.Value < want) {
			out = append(out, item)
		}
	}
	return out
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.matching(*in.TableName, in.KeyConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.matching(*in.TableName, in.FilterExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	return &dynamodb.ScanOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++

	unprocessed := map[string][]types.WriteRequest{}
	for table, requests := range in.RequestItems {
		if len(requests) > batchWriteLimit {
			return nil, errors.New("too many items in batch")
		}
		for i, req := range requests {
			if f.throttleBatches {
				unprocessed[table] = append(unprocessed[table], req)
				continue
			}
			if f.unprocessedOnce && i == 0 {
				f.unprocessedOnce = false
				unprocessed[table] = append(unprocessed[table], req)
				continue
			}
			delete(f.table(table), f.keyOf(table, req.DeleteRequest.Key))
		}
	}
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: unprocessed}, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDynamoRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repositories.RepositoryManager {
		return NewRepositoryManager(newFakeDynamo(), testTables, testLogger())
	})
}

func TestImageDeleteByGalleryBatches(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewImageRepository(fake, testTables.Images, testLogger())
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("IMG-%08d", i)
		require.NoError(t, repo.Create(ctx, models.NewImage("BATCH2025A", id, id+".jpg", "galleries/BATCH2025A/"+id+".jpg", 1, time.Now())))
	}

	fake.unprocessedOnce = true
	n, err := repo.DeleteByGallery(ctx, "BATCH2025A")
	require.NoError(t, err)
	assert.Equal(t, 30, n)
	assert.Equal(t, 3, fake.batchCalls, "two batches plus one retry of unprocessed items")

	left, err := repo.ListByGallery(ctx, "BATCH2025A")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestImageDeleteByGalleryGivesUpOnThrottling(t *testing.T) {
	fake := newFakeDynamo()
	repo := NewImageRepository(fake, testTables.Images, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("IMG-%08d", i)
		require.NoError(t, repo.Create(ctx, models.NewImage("SLOW2025A", id, id+".jpg", "galleries/SLOW2025A/"+id+".jpg", 1, time.Now())))
	}

	fake.throttleBatches = true
	n, err := repo.DeleteByGallery(ctx, "SLOW2025A")
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, repositories.IsConnection(err))
	assert.Contains(t, err.Error(), "3 image delete requests unprocessed after 5 retries")
	assert.Equal(t, maxUnprocessedRetries+1, fake.batchCalls)
}

func TestImageLegacyUploadedAt(t *testing.T) {
	fake := newFakeDynamo()
	fake.table(testTables.Images)["LEGACY2024A|IMG-1"] = map[string]types.AttributeValue{
		"galleryCode": &types.AttributeValueMemberS{Value: "LEGACY2024A"},
		"imageId":     &types.AttributeValueMemberS{Value: "IMG-1"},
		"uploadedAt":  &types.AttributeValueMemberS{Value: "2024-05-01T09:30:00.123456"},
	}

	images, err := NewImageRepository(fake, testTables.Images, testLogger()).ListByGallery(context.Background(), "LEGACY2024A")
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.NotNil(t, images[0].UploadDate)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 123456000, time.UTC), *images[0].UploadDate)
}

func TestGalleryItemRoundTripsTimestamps(t *testing.T) {
	g := repotest.Gallery("TIME2025A", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	item := newGalleryItem(g)

	assert.Equal(t, "2025-01-02T03:04:05Z", item.CreatedAt)
	assert.Equal(t, "2025-04-02T03:04:05Z", item.ExpiresAt)
	assert.True(t, g.CreatedAt.Equal(item.model().CreatedAt))

	_, ok := parseTime("not a time")
	assert.False(t, ok)
}

func TestHealthReportsUnreachableTable(t *testing.T) {
	fake := newFakeDynamo()
	fake.describeErr = errors.New("ResourceNotFoundException")

	err := NewRepositoryManager(fake, testTables, testLogger()).Health(context.Background())
	assert.True(t, repositories.IsConnection(err), "expected connection error, got %v", err)
}
