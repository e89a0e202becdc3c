// Command images serves image upload and listing behind API Gateway.
package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"gallery-delivery-api/pkg/lambda"
	"gallery-delivery-api/pkg/server"
)

func main() {
	handler := server.LambdaHandler(server.GetConnectionManager(), func(c *server.Container) lambda.HandlerFunc {
		return c.Handlers.Image.Handle
	})
	awslambda.Start(lambda.Serve(handler))
}
