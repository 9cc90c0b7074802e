package repositories

import (
	"context"

	"folio/internal/domain/models"
)

// ChapterRepository persists chapters and maintains the per-project
// order invariant: sort orders are unique and contiguous starting at 1.
type ChapterRepository interface {
	// Create assigns the next sort order within the project and
	// inserts the chapter. Assignment and insert happen in one
	// transaction so concurrent creates cannot collide.
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id, projectID string) (*models.Chapter, error)
	// ListByProject returns chapters in sort order.
	ListByProject(ctx context.Context, projectID string) ([]models.Chapter, error)
	Update(ctx context.Context, chapter *models.Chapter) error
	// Delete removes the chapter and compacts the orders of all later
	// chapters down by one, keeping orders contiguous.
	Delete(ctx context.Context, id, projectID string) error
	CountByProject(ctx context.Context, projectID string) (int, error)
}
