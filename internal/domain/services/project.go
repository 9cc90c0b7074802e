package services

import (
	"context"

	"folio/internal/domain/models"
)

// CreateProjectRequest represents a request to create a project.
// Metadata arrives already parsed into the versioned struct; handlers
// never pass raw JSON blobs down.
type CreateProjectRequest struct {
	UserID   string          `json:"-"`
	Title    string          `json:"title"`
	Genre    string          `json:"genre"`
	Language string          `json:"language"`
	Metadata models.Metadata `json:"metadata"`
}

// UpdateProjectRequest represents a partial project update.
type UpdateProjectRequest struct {
	Title    *string          `json:"title"`
	Genre    *string          `json:"genre"`
	Language *string          `json:"language"`
	Metadata *models.Metadata `json:"metadata"`
	CoverURL *string          `json:"cover_url"`
}

// ProjectService defines business logic operations for projects.
type ProjectService interface {
	// CreateProject creates a project after checking the tier's
	// project-count limit. No state changes on a failed check.
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id, userID string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id, userID string) error
}
