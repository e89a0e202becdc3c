package dynamo

import (
	"context"

	"gallery-delivery-api/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

// RepositoryManager implements repositories.RepositoryManager on DynamoDB
type RepositoryManager struct {
	client    DynamoDBAPI
	tables    Tables
	logger    *logrus.Logger
	galleries *GalleryRepository
	images    *ImageRepository
	contacts  *ContactRepository
	curation  *CurationRepository
}

// NewRepositoryManager creates repositories for each configured table
func NewRepositoryManager(client DynamoDBAPI, tables Tables, logger *logrus.Logger) *RepositoryManager {
	if logger == nil {
		logger = logrus.New()
	}

	return &RepositoryManager{
		client:    client,
		tables:    tables,
		logger:    logger,
		galleries: NewGalleryRepository(client, tables.Galleries, logger),
		images:    NewImageRepository(client, tables.Images, logger),
		contacts:  NewContactRepository(client, tables.Contacts, logger),
		curation:  NewCurationRepository(client, tables.Curation, logger),
	}
}

var _ repositories.RepositoryManager = (*RepositoryManager)(nil)

// Galleries returns the gallery repository
func (m *RepositoryManager) Galleries() repositories.GalleryRepository { return m.galleries }

// Images returns the image repository
func (m *RepositoryManager) Images() repositories.ImageRepository { return m.images }

// Contacts returns the contact repository
func (m *RepositoryManager) Contacts() repositories.ContactRepository { return m.contacts }

// Curation returns the curation repository
func (m *RepositoryManager) Curation() repositories.CurationRepository { return m.curation }

// Close is a no-op; the SDK client holds no connections that need releasing
func (m *RepositoryManager) Close() error { return nil }

// Health describes every table and fails on the first unreachable one
func (m *RepositoryManager) Health(ctx context.Context) error {
	for _, name := range []string{m.tables.Galleries, m.tables.Images, m.tables.Contacts, m.tables.Curation} {
		if name == "" {
			continue
		}
		if _, err := m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}); err != nil {
			m.logger.WithError(err).WithField("table", name).Error("DynamoDB health check failed")
			return repositories.ConnectionError(err)
		}
	}
	return nil
}
