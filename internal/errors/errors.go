package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the structured error body every failing route returns:
// {"error": "<message>"}
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *APIError) Unwrap() error {
	return e.cause
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given status and message
func New(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// Wrap creates an APIError whose message is the cause's own text
func Wrap(statusCode int, cause error) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    cause.Error(),
		cause:      cause,
	}
}

// NotFound creates a 404 error naming the missing resource
func NotFound(message string, cause error) *APIError {
	return &APIError{
		StatusCode: http.StatusNotFound,
		Message:    message,
		cause:      cause,
	}
}

// Processing creates a 500 error echoing the raw error text
func Processing(cause error) *APIError {
	return Wrap(http.StatusInternalServerError, cause)
}
