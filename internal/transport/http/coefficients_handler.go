package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "pricelens/internal/errors"
	"pricelens/internal/transport/respond"
)

// CoefficientsHandler serves ridge coefficients per product
type CoefficientsHandler struct {
	service      FactorServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCoefficientsHandler creates a new coefficients handler
func NewCoefficientsHandler(service FactorServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CoefficientsHandler {
	return &CoefficientsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "coefficients_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the coefficient routes, mounted under /coefficients.
// POST is accepted for form clients and its body is ignored.
func (h *CoefficientsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{industry}/{product}", h.GetCoefficients)
	r.Post("/{industry}/{product}", h.GetCoefficients)
	return r
}

// GetCoefficients handles GET and POST /coefficients/{industry}/{product}
func (h *CoefficientsHandler) GetCoefficients(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")
	product := chi.URLParam(r, "product")

	coefs, err := h.service.Coefficients(r.Context(), industry, product)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	respond.JSON(w, r, coefs)
}
