package repositories

import (
	"context"

	"folio/internal/domain/models"
)

// ArtifactRepository persists export artifact records. Records are
// write-once: there is no update or delete.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *models.ExportArtifact) error
	GetByID(ctx context.Context, id string) (*models.ExportArtifact, error)
	// ListByProject returns artifacts newest first.
	ListByProject(ctx context.Context, projectID string) ([]models.ExportArtifact, error)
}
