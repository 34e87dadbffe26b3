package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "pricelens/internal/errors"
	"pricelens/internal/transport/respond"
)

// DataHandler serves product listings and default factor values
type DataHandler struct {
	service      FactorServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(service FactorServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes, mounted under /data
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{industry}", h.GetProducts)
	r.Get("/{industry}/{product}", h.GetDefaultFactors)
	return r
}

// GetProducts handles GET /data/{industry}
func (h *DataHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")

	products, err := h.service.ListProducts(r.Context(), industry)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if products == nil {
		products = []string{}
	}

	respond.JSON(w, r, products)
}

// GetDefaultFactors handles GET /data/{industry}/{product}
func (h *DataHandler) GetDefaultFactors(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")
	product := chi.URLParam(r, "product")

	values, err := h.service.DefaultFactors(r.Context(), industry, product)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if values == nil {
		values = []interface{}{}
	}

	h.logger.DebugContext(r.Context(), "default factors served",
		slog.String("industry", industry),
		slog.String("product", product),
		slog.Int("count", len(values)))

	respond.JSON(w, r, values)
}
