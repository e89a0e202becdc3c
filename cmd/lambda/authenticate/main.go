// Command authenticate serves gallery sign-in behind API Gateway.
package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"gallery-delivery-api/pkg/lambda"
	"gallery-delivery-api/pkg/server"
)

func main() {
	handler := server.LambdaHandler(server.GetConnectionManager(), func(c *server.Container) lambda.HandlerFunc {
		return c.Handlers.Auth.Handle
	})
	awslambda.Start(lambda.Serve(handler))
}
