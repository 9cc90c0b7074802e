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

// ProjectRepository is a map-backed project store.
type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
}

// NewProjectRepository creates an empty in-memory project store.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{projects: make(map[string]*models.Project)}
}

var _ repositories.ProjectRepository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return nil, &domain.NotFoundError{Message: "project not found"}
	}
	cp := *p
	return &cp, nil
}

func (r *ProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Project{}
	for _, p := range r.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.projects[project.ID]
	if !ok || existing.UserID != project.UserID {
		return &domain.NotFoundError{Message: "project not found"}
	}
	project.UpdatedAt = time.Now()
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return &domain.NotFoundError{Message: "project not found"}
	}
	delete(r.projects, id)
	return nil
}

func (r *ProjectRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.projects {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}
