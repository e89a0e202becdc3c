package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gallery-delivery-api/pkg/lambda"
)

// Adapt serves a Lambda-style handler from gin. The route template is passed
// as the request resource with {param} placeholders.
func Adapt(h lambda.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requestFromGin(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Success: false, Message: "Invalid request body"})
			return
		}

		resp := h(c.Request.Context(), req)
		writeResponse(c, resp)
	}
}

func requestFromGin(c *gin.Context) (*lambda.Request, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.Request.Header.Get(k)
	}

	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}

	return &lambda.Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Resource:    ginToResource(c.FullPath()),
		Headers:     headers,
		QueryParams: query,
		Body:        body,
		PathParams:  params,
	}, nil
}

func writeResponse(c *gin.Context, resp *lambda.Response) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	contentType := resp.Headers["Content-Type"]
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// resourceToGin rewrites /a/{id}/b into /a/:id/b
func resourceToGin(resource string) string {
	segments := strings.Split(resource, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			segments[i] = ":" + strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		}
	}
	return strings.Join(segments, "/")
}

// ginToResource rewrites /a/:id/b into /a/{id}/b
func ginToResource(fullPath string) string {
	segments := strings.Split(fullPath, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = "{" + strings.TrimPrefix(s, ":") + "}"
		}
	}
	return strings.Join(segments, "/")
}
