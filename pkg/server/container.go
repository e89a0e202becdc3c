package server

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/adapters/storage"
	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/internal/curation"
	"gallery-delivery-api/internal/database"
	"gallery-delivery-api/internal/handlers"
	"gallery-delivery-api/internal/middleware"
	"gallery-delivery-api/internal/notify"
	"gallery-delivery-api/internal/repositories"
	"gallery-delivery-api/internal/repositories/dynamo"
	"gallery-delivery-api/internal/repositories/memory"
	"gallery-delivery-api/internal/repositories/sqlite"
	"gallery-delivery-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Auth     *middleware.AuthService
	Services *services.ServiceContainer
	Handlers *handlers.Handlers
	Curation *curation.API

	repos   repositories.RepositoryManager
	objects storage.ObjectStorage
	aws     *aws.Config
}

// NewContainer wires repositories, storage, mail, services and handlers from cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: config.NewLogger(cfg),
	}

	repos, err := c.newRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}
	c.repos = repos

	var s3Client *s3.Client
	if cfg.Storage.Type == string(storage.StorageTypeS3) {
		awsCfg, err := c.awsConfig()
		if err != nil {
			c.Close()
			return nil, err
		}
		s3Client = s3.NewFromConfig(awsCfg)
	}
	objects, err := storage.DefaultFactory(c.Logger).Create(cfg.Storage, s3Client)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}
	c.objects = objects

	var sesClient notify.SESAPI
	if cfg.Email.Provider == "ses" {
		awsCfg, err := c.awsConfig()
		if err != nil {
			c.Close()
			return nil, err
		}
		sesClient = sesv2.NewFromConfig(awsCfg)
	}
	mailer, err := notify.New(cfg, sesClient, c.Logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	c.Auth = middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	svc, err := services.NewServiceContainer(cfg, services.Dependencies{
		Repos:   repos,
		Objects: objects,
		Mailer:  mailer,
		Tokens:  c.Auth,
		Logger:  c.Logger,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}
	c.Services = svc
	c.Handlers = handlers.New(svc, c.Logger)
	c.Curation = curation.NewAPI(curation.WithJournal(c.journal()), curation.WithLogger(c.Logger))

	c.Logger.WithFields(logrus.Fields{
		"database": cfg.Database.Type,
		"storage":  cfg.Storage.Type,
		"email":    cfg.Email.Provider,
		"journal":  cfg.Curation.Journal,
	}).Info("Container initialized")
	return c, nil
}

func (c *Container) newRepositories() (repositories.RepositoryManager, error) {
	db := c.Config.Database
	switch db.Type {
	case "dynamodb":
		awsCfg, err := c.awsConfig()
		if err != nil {
			return nil, err
		}
		tables := dynamo.Tables{
			Galleries: db.GalleriesTable,
			Images:    db.ImagesTable,
			Contacts:  db.ContactsTable,
			Curation:  db.CurationTable,
		}
		return dynamo.NewRepositoryManager(dynamodb.NewFromConfig(awsCfg), tables, c.Logger), nil
	case "sqlite":
		conn := database.NewConnectionManager(database.NewConnectionConfig(db, c.Logger))
		if err := conn.Connect(); err != nil {
			return nil, err
		}
		return sqlite.NewSQLiteRepositoryManager(conn.GetDB(), c.Logger), nil
	case "memory", "":
		return memory.NewRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", db.Type)
	}
}

// journal returns the repository journal when CURATION_JOURNAL is on
func (c *Container) journal() curation.Journal {
	if !c.Config.Curation.Journal || c.Services == nil || c.Services.Journal == nil {
		return curation.NopJournal{}
	}
	return c.Services.Journal
}

// awsConfig loads the shared SDK configuration once
func (c *Container) awsConfig() (aws.Config, error) {
	if c.aws != nil {
		return *c.aws, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(c.Config.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	c.aws = &cfg
	return cfg, nil
}

// Health reports whether the record store is reachable
func (c *Container) Health(ctx context.Context) error {
	if c.repos == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}
	return c.repos.Health(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	var firstErr error
	if c.objects != nil {
		if err := c.objects.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close object storage: %w", err)
		}
	}
	if c.repos != nil {
		if err := c.repos.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close repositories: %w", err)
		}
	}
	return firstErr
}
