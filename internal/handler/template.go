package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/domain/repositories"
	"folio/internal/httputil"
)

// TemplateHandler serves the style template catalog. Templates are
// read-only over the API; new ones arrive through seeding.
type TemplateHandler struct {
	templates repositories.TemplateRepository
	logger    *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates repositories.TemplateRepository, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// ListTemplates returns all style templates
// GET /api/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, templates)
}

// GetTemplate retrieves one template
// GET /api/templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.templates.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, template)
}
