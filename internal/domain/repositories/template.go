package repositories

import (
	"context"

	"folio/internal/domain/models"
)

// TemplateRepository persists style templates. Templates are immutable
// once referenced by an artifact, so there is no Update.
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
}
