// Command cleanup deletes expired galleries on a schedule.
package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/handlers"
	"gallery-delivery-api/internal/models"
	"gallery-delivery-api/pkg/server"
)

func handler(ctx context.Context, event events.CloudWatchEvent) (*handlers.CleanupResponse, error) {
	container, err := server.GetConnectionManager().GetContainer(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
		return &handlers.CleanupResponse{
			StatusCode:     http.StatusInternalServerError,
			CleanupSummary: models.CleanupSummary{Message: "Cleanup failed: " + err.Error()},
		}, nil
	}

	container.Logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"source":   event.Source,
	}).Info("Scheduled cleanup triggered")
	return container.Handlers.Cleanup.Run(ctx), nil
}

func main() {
	awslambda.Start(handler)
}
