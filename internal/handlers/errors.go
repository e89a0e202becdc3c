package handlers

import (
	"net/http"

	"gallery-delivery-api/pkg/lambda"
)

// ErrorResponse is the body of a failed gallery request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func failure(status int, message string) *lambda.Response {
	return lambda.JSON(status, ErrorResponse{Success: false, Message: message})
}

func badRequest(message string) *lambda.Response {
	return failure(http.StatusBadRequest, message)
}

func methodNotAllowed() *lambda.Response {
	return failure(http.StatusMethodNotAllowed, "Method not allowed")
}
