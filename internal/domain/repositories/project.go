package repositories

import (
	"context"

	"folio/internal/domain/models"
)

// ProjectRepository persists projects. All reads are owner-scoped:
// a project that exists but belongs to someone else is NotFound.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)
	List(ctx context.Context, userID string) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id, userID string) error
	// CountByUser returns the number of active projects for the user.
	CountByUser(ctx context.Context, userID string) (int, error)
}
