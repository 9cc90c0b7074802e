package services

import (
	"context"

	"folio/internal/domain/models"
)

// CreateChapterRequest represents a request to append a chapter to a
// project. The sort order is assigned by the repository, never by the
// caller.
type CreateChapterRequest struct {
	ProjectID string               `json:"-"`
	UserID    string               `json:"-"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Status    models.ChapterStatus `json:"status"`
}

// UpdateChapterRequest represents a partial chapter update.
type UpdateChapterRequest struct {
	Title   *string               `json:"title"`
	Content *string               `json:"content"`
	Status  *models.ChapterStatus `json:"status"`
}

// ImportChapterRequest carries an uploaded file to be converted into
// chapter markup. Filename selects the converter by extension.
type ImportChapterRequest struct {
	ProjectID string
	UserID    string
	Filename  string
	Data      []byte
}

// ChapterService defines business logic operations for chapters.
type ChapterService interface {
	CreateChapter(ctx context.Context, req *CreateChapterRequest) (*models.Chapter, error)
	GetChapter(ctx context.Context, id, projectID, userID string) (*models.Chapter, error)
	ListChapters(ctx context.Context, projectID, userID string) ([]models.Chapter, error)
	UpdateChapter(ctx context.Context, id, projectID, userID string, req *UpdateChapterRequest) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id, projectID, userID string) error
	// ImportChapter converts an uploaded file (md, txt, html) and
	// creates a chapter from the result.
	ImportChapter(ctx context.Context, req *ImportChapterRequest) (*models.Chapter, error)
}
