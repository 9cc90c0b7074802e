package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/domain/services"
	"folio/internal/handler/sse"
	"folio/internal/httputil"
)

// GenerationHandler handles AI-assisted drafting requests
type GenerationHandler struct {
	generationService services.GenerationService
	sseConfig         *sse.Config
	logger            *slog.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generationService services.GenerationService, sseConfig *sse.Config, logger *slog.Logger) *GenerationHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &GenerationHandler{
		generationService: generationService,
		sseConfig:         sseConfig,
		logger:            logger,
	}
}

type completeResponse struct {
	Text string `json:"text"`
}

// Complete runs a one-shot generation and returns the full text
// POST /api/generate
func (h *GenerationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CompleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID

	text, err := h.generationService.Complete(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, completeResponse{Text: text})
}

type streamEvent struct {
	Text  string `json:"text,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// Stream streams a generation into a chapter over SSE
// POST /api/projects/{projectID}/chapters/{id}/generate
//
// Each event carries a text fragment; the final event has done set,
// plus an error when the stream failed or the splice was rejected.
func (h *GenerationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.StreamRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID
	req.ProjectID = r.PathValue("projectID")
	req.ChapterID = r.PathValue("id")

	// Setup errors arrive before any SSE bytes, so they can still be
	// plain problem+json responses.
	fragments, err := h.generationService.StreamIntoChapter(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	writer, err := sse.NewStreamWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAliveDone := keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	for {
		select {
		case fragment, ok := <-fragments:
			if !ok {
				return
			}
			event := streamEvent{Text: fragment.Text, Done: fragment.Done}
			if fragment.Err != nil {
				event.Error = fragment.Err.Error()
			}
			if err := writer.WriteEvent(event); err != nil {
				h.logger.Debug("client dropped generation stream",
					"chapter_id", req.ChapterID, "error", err)
				return
			}
		case <-keepAliveDone:
			// Keep-alive failed: the connection is gone. The service
			// goroutine finishes the splice on its own.
			return
		case <-r.Context().Done():
			return
		}
	}
}
