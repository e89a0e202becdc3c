// Command vip serves the curation commands behind API Gateway.
package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/pkg/lambda"
	"gallery-delivery-api/pkg/server"
)

func main() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to load configuration; curation journal disabled")
		cfg = nil
	}

	api := server.NewCurationAPI(cfg, server.GetConnectionManager())
	awslambda.Start(lambda.Serve(api.Handle))
}
