package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/httputil"
	"folio/internal/storage"
)

// maxCoverSize caps cover image uploads at 5 MB.
const maxCoverSize = 5 << 20

// UploadHandler issues presigned cover-upload URLs and receives the
// uploads they authorize. The receive endpoint is unauthenticated; the
// token is the credential and names exactly one object.
type UploadHandler struct {
	presigner Presigner
	store     storage.ObjectStore
	logger    *slog.Logger
}

// Presigner is the subset of the storage presigner the handler needs.
type Presigner interface {
	PresignUpload(bucket, key string, ttl time.Duration) (string, error)
	VerifyUploadToken(token string) (bucket, key string, err error)
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(presigner Presigner, store storage.ObjectStore, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{presigner: presigner, store: store, logger: logger}
}

type presignRequest struct {
	Filename string `json:"filename"`
}

type presignResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// PresignCoverUpload returns a time-bounded URL for one cover upload
// POST /api/uploads/covers
func (h *UploadHandler) PresignCoverUpload(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req presignRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ext := strings.ToLower(path.Ext(req.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		httputil.RespondError(w, http.StatusBadRequest, "cover must be png, jpg or webp")
		return
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)
	uploadURL, err := h.presigner.PresignUpload(storage.BucketCovers, key, storage.MaxUploadTTL)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, presignResponse{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresIn: int(storage.MaxUploadTTL.Seconds()),
	})
}

// ReceiveUpload stores the body at the object the token names
// PUT /v1/uploads?token=...
func (h *UploadHandler) ReceiveUpload(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing upload token")
		return
	}

	bucket, key, err := h.presigner.VerifyUploadToken(token)
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired upload token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	if len(data) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "empty upload")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	url, err := h.store.Put(r.Context(), bucket, key, data, contentType)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("cover uploaded", "bucket", bucket, "key", key, "bytes", len(data))

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
