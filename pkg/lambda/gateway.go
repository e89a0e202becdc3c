package lambda

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// GatewayHandler is the signature the Lambda runtime invokes for API Gateway
// proxy events
type GatewayHandler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Serve adapts h to API Gateway proxy events. Failures are already encoded in
// the response, so the returned error is always nil.
func Serve(h HandlerFunc) GatewayHandler {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp := h(ctx, FromAPIGateway(event))
		if resp == nil {
			resp = JSON(500, map[string]string{"message": "Internal server error"})
		}
		return resp.ToAPIGateway(), nil
	}
}
