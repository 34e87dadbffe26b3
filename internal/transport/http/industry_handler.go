package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	apierrors "pricelens/internal/errors"
	"pricelens/internal/transport/respond"
	"pricelens/pkg/contracts/domain"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// indexPage is the data handed to the index template
type indexPage struct {
	Industries []domain.IndustrySummary
}

// IndustryHandler serves the industry configuration as JSON and as the HTML index
type IndustryHandler struct {
	service      FactorServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewIndustryHandler creates a new industry handler
func NewIndustryHandler(service FactorServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *IndustryHandler {
	return &IndustryHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "industry_handler")),
		errorHandler: errorHandler,
	}
}

// ListIndustries handles GET /industries
func (h *IndustryHandler) ListIndustries(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, h.service.Industries())
}

// Index handles GET /. It lists the industry directories found on disk next
// to their configured factors; directories without configuration are shown
// with empty lists.
func (h *IndustryHandler) Index(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListIndustries(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page := indexPage{Industries: make([]domain.IndustrySummary, 0, len(names))}
	for _, name := range names {
		page.Industries = append(page.Industries, h.service.Industry(name))
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "index write failed", slog.String("error", err.Error()))
	}
}
