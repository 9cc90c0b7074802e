package handler

import (
	"io"
	"log/slog"
	"net/http"

	"folio/internal/config"
	"folio/internal/domain/services"
	"folio/internal/httputil"
)

// ChapterHandler handles chapter HTTP requests
type ChapterHandler struct {
	chapterService services.ChapterService
	logger         *slog.Logger
}

// NewChapterHandler creates a new chapter handler
func NewChapterHandler(chapterService services.ChapterService, logger *slog.Logger) *ChapterHandler {
	return &ChapterHandler{
		chapterService: chapterService,
		logger:         logger,
	}
}

// CreateChapter appends a chapter to a project
// POST /api/projects/{projectID}/chapters
func (h *ChapterHandler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")

	var req services.CreateChapterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProjectID = projectID
	req.UserID = userID

	chapter, err := h.chapterService.CreateChapter(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, chapter)
}

// ListChapters returns a project's chapters in reading order
// GET /api/projects/{projectID}/chapters
func (h *ChapterHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")

	chapters, err := h.chapterService.ListChapters(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapters)
}

// GetChapter retrieves a single chapter
// GET /api/projects/{projectID}/chapters/{id}
func (h *ChapterHandler) GetChapter(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")
	id := r.PathValue("id")

	chapter, err := h.chapterService.GetChapter(r.Context(), id, projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapter)
}

// UpdateChapter applies a partial update to a chapter
// PATCH /api/projects/{projectID}/chapters/{id}
func (h *ChapterHandler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")
	id := r.PathValue("id")

	var req services.UpdateChapterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chapter, err := h.chapterService.UpdateChapter(r.Context(), id, projectID, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapter)
}

// DeleteChapter removes a chapter; later chapters close the gap
// DELETE /api/projects/{projectID}/chapters/{id}
func (h *ChapterHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")
	id := r.PathValue("id")

	if err := h.chapterService.DeleteChapter(r.Context(), id, projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportChapter converts an uploaded file into a new chapter
// POST /api/projects/{projectID}/chapters/import
//
// Multipart form with a single "file" part. Supported extensions:
// md, markdown, txt, text, html, htm.
func (h *ChapterHandler) ImportChapter(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	projectID := r.PathValue("projectID")

	if err := r.ParseMultipartForm(int64(config.MaxImportFileSize)); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "a \"file\" part is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, int64(config.MaxImportFileSize)+1))
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}

	chapter, err := h.chapterService.ImportChapter(r.Context(), &services.ImportChapterRequest{
		ProjectID: projectID,
		UserID:    userID,
		Filename:  header.Filename,
		Data:      data,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("chapter imported",
		"chapter_id", chapter.ID,
		"project_id", projectID,
		"filename", header.Filename)

	httputil.RespondJSON(w, http.StatusCreated, chapter)
}
