package curation

import (
	"fmt"
	"net/http"
)

// Kind classifies a curation failure
type Kind int

const (
	KindMissingBody Kind = iota + 1
	KindInvalidBody
	KindValidation
	KindRouteNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindMissingBody:
		return "MissingBody"
	case KindInvalidBody:
		return "InvalidBody"
	case KindValidation:
		return "ValidationError"
	case KindRouteNotFound:
		return "RouteNotFound"
	case KindInternal:
		return "InternalError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a curation failure that maps onto an HTTP status and JSON body
type Error struct {
	Kind    Kind
	Message string
	// Details are merged into the response body next to "message"
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// StatusCode returns the HTTP status for the error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindMissingBody, KindInvalidBody, KindValidation:
		return http.StatusBadRequest
	case KindRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Payload returns the response body for the error
func (e *Error) Payload() map[string]interface{} {
	body := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		body[k] = v
	}
	body["message"] = e.Message
	return body
}

var (
	errMissingBody = &Error{Kind: KindMissingBody, Message: "Missing request body"}
	errInvalidBody = &Error{Kind: KindInvalidBody, Message: "Invalid JSON body"}
)

func validationError(message string, details map[string]interface{}) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func routeNotFound(resource, method string) *Error {
	return &Error{
		Kind:    KindRouteNotFound,
		Message: "Route not found",
		Details: map[string]interface{}{
			"resource": resource,
			"method":   method,
		},
	}
}

func internalError(cause error, resource, method string) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "Internal server error",
		Details: map[string]interface{}{
			"error":    cause.Error(),
			"resource": resource,
			"method":   method,
		},
	}
}
