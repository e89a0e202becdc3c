package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// CORSHeaders are attached to every response produced by the gallery handlers
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,DELETE,PATCH,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type,Authorization",
}

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Resource    string            `json:"resource"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"query_params"`
	Body        []byte            `json:"body"`
	PathParams  map[string]string `json:"path_params"`

	// Decoded is set when the body reached us already decoded into a mapping
	// (direct invocations, test harnesses). It takes precedence over Body.
	Decoded map[string]interface{} `json:"-"`
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}

// HandlerFunc is a framework-agnostic handler. It always returns a response.
type HandlerFunc func(ctx context.Context, req *Request) *Response

// PathParam returns a path parameter, or "" when absent
func (r *Request) PathParam(name string) string {
	if r.PathParams == nil {
		return ""
	}
	return r.PathParams[name]
}

// IsMethod reports whether the request method matches, ignoring case
func (r *Request) IsMethod(method string) bool {
	return strings.EqualFold(r.Method, method)
}

// QueryParam returns a query string parameter, or "" when absent
func (r *Request) QueryParam(name string) string {
	if r.QueryParams == nil {
		return ""
	}
	return r.QueryParams[name]
}

// FromAPIGateway converts an API Gateway proxy event into a Request.
// Base64 encoded bodies are decoded; an undecodable body is kept raw so body
// parsing reports it as invalid rather than missing.
func FromAPIGateway(event events.APIGatewayProxyRequest) *Request {
	body := []byte(event.Body)
	if event.IsBase64Encoded && event.Body != "" {
		if decoded, err := base64.StdEncoding.DecodeString(event.Body); err == nil {
			body = decoded
		}
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Resource:    event.Resource,
		Headers:     event.Headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
	}
}

// ToAPIGateway converts a Response into an API Gateway proxy response
func (r *Response) ToAPIGateway() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       string(r.Body),
	}
}

// JSON builds a JSON response carrying the CORS headers and a Content-Type
func JSON(status int, payload interface{}) *Response {
	headers := make(map[string]string, len(CORSHeaders)+1)
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"

	body, err := json.Marshal(payload)
	if err != nil {
		status = 500
		body = []byte(`{"message":"Internal server error","error":"failed to encode response"}`)
	}

	return &Response{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

// Preflight builds the response to a CORS OPTIONS request: status 200,
// empty body and only the CORS headers.
func Preflight() *Response {
	headers := make(map[string]string, len(CORSHeaders))
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	return &Response{
		StatusCode: 200,
		Headers:    headers,
		Body:       []byte{},
	}
}
