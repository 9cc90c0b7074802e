package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// ArtifactRepository is a map-backed, write-once artifact store.
type ArtifactRepository struct {
	mu        sync.RWMutex
	artifacts map[string]*models.ExportArtifact
}

// NewArtifactRepository creates an empty in-memory artifact store.
func NewArtifactRepository() *ArtifactRepository {
	return &ArtifactRepository{artifacts: make(map[string]*models.ExportArtifact)}
}

var _ repositories.ArtifactRepository = (*ArtifactRepository)(nil)

func (r *ArtifactRepository) Create(ctx context.Context, artifact *models.ExportArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if artifact.ID == "" {
		artifact.ID = uuid.NewString()
	}
	cp := *artifact
	r.artifacts[artifact.ID] = &cp
	return nil
}

func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*models.ExportArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.artifacts[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "artifact not found"}
	}
	cp := *a
	return &cp, nil
}

func (r *ArtifactRepository) ListByProject(ctx context.Context, projectID string) ([]models.ExportArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.ExportArtifact{}
	for _, a := range r.artifacts {
		if a.ProjectID == projectID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}

// Count returns the total number of stored artifacts.
func (r *ArtifactRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.artifacts)
}
