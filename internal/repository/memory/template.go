package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// TemplateRepository is a map-backed template store.
type TemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

// NewTemplateRepository creates an empty in-memory template store.
func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{templates: make(map[string]*models.Template)}
}

var _ repositories.TemplateRepository = (*TemplateRepository)(nil)

func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	template.CreatedAt = time.Now()
	cp := *template
	r.templates[template.ID] = &cp
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "template not found"}
	}
	cp := *t
	return &cp, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Template{}
	for _, t := range r.templates {
		out = append(out, *t)
	}
	return out, nil
}
