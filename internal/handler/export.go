package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/domain/services"
	"folio/internal/httputil"
)

// ExportHandler handles export HTTP requests
type ExportHandler struct {
	exportService services.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService services.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// Export runs a synchronous export and returns the artifact record
// POST /api/projects/{projectID}/exports
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")

	var req services.ExportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID
	req.ProjectID = projectID

	artifact, err := h.exportService.Export(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, artifact)
}

// ListArtifacts returns a project's export history, newest first
// GET /api/projects/{projectID}/exports
func (h *ExportHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")

	artifacts, err := h.exportService.ListArtifacts(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, artifacts)
}
