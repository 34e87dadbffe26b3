package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"pricelens/internal/catalog"
	"pricelens/internal/infrastructure"
	"pricelens/internal/transport/respond"
)

// ErrorHandler turns errors into JSON responses and logs them
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       infrastructure.WithComponent(logger, "error_handler"),
		includeStack: includeStack,
	}
}

// HandleError converts any error to an APIError and responds with it
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	apiErr := h.ToAPIError(err)

	level := slog.LevelError
	if apiErr.StatusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	infrastructure.WithError(h.logger, err).Log(r.Context(), level, "request failed",
		slog.Int("status", apiErr.StatusCode),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	respond.JSON(w, r, apiErr)
}

// ToAPIError classifies err. API errors pass through, missing industries and
// products become 404s, context deadlines become timeouts and everything else
// is a processing error carrying the raw text.
func (h *ErrorHandler) ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var nf *catalog.NotFoundError
	if errors.As(err, &nf) {
		return NotFound(nf.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(http.StatusGatewayTimeout, err)
	}

	return Processing(err)
}

// HandlePanic logs a recovered panic and answers with a 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	attrs := []any{
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}
	h.logger.ErrorContext(r.Context(), "panic recovered", attrs...)

	respond.JSON(w, r, New(http.StatusInternalServerError, fmt.Sprintf("%v", recovered)))
}

// NotFound answers unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, New(http.StatusNotFound, fmt.Sprintf("%s not found", r.URL.Path)))
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, New(http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method)))
}
