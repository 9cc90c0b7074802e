package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// ChapterRepository is a map-backed chapter store that maintains the
// contiguous-order invariant under a single lock.
type ChapterRepository struct {
	mu       sync.Mutex
	chapters map[string]*models.Chapter
}

// NewChapterRepository creates an empty in-memory chapter store.
func NewChapterRepository() *ChapterRepository {
	return &ChapterRepository{chapters: make(map[string]*models.Chapter)}
}

var _ repositories.ChapterRepository = (*ChapterRepository)(nil)

func (r *ChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chapter.ID == "" {
		chapter.ID = uuid.NewString()
	}
	now := time.Now()
	chapter.CreatedAt = now
	chapter.UpdatedAt = now

	// Next contiguous order within the project.
	maxOrder := 0
	for _, c := range r.chapters {
		if c.ProjectID == chapter.ProjectID && c.SortOrder > maxOrder {
			maxOrder = c.SortOrder
		}
	}
	chapter.SortOrder = maxOrder + 1

	cp := *chapter
	r.chapters[chapter.ID] = &cp
	return nil
}

func (r *ChapterRepository) GetByID(ctx context.Context, id, projectID string) (*models.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chapters[id]
	if !ok || c.ProjectID != projectID {
		return nil, &domain.NotFoundError{Message: "chapter not found"}
	}
	cp := *c
	return &cp, nil
}

func (r *ChapterRepository) ListByProject(ctx context.Context, projectID string) ([]models.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Chapter{}
	for _, c := range r.chapters {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *ChapterRepository) Update(ctx context.Context, chapter *models.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.chapters[chapter.ID]
	if !ok || existing.ProjectID != chapter.ProjectID {
		return &domain.NotFoundError{Message: "chapter not found"}
	}
	// Order is repository-managed; ignore caller-supplied values.
	chapter.SortOrder = existing.SortOrder
	chapter.UpdatedAt = time.Now()
	cp := *chapter
	r.chapters[chapter.ID] = &cp
	return nil
}

// Delete removes the chapter and compacts later orders down by one so
// orders stay contiguous.
func (r *ChapterRepository) Delete(ctx context.Context, id, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chapters[id]
	if !ok || c.ProjectID != projectID {
		return &domain.NotFoundError{Message: "chapter not found"}
	}
	removedOrder := c.SortOrder
	delete(r.chapters, id)

	for _, other := range r.chapters {
		if other.ProjectID == projectID && other.SortOrder > removedOrder {
			other.SortOrder--
		}
	}
	return nil
}

func (r *ChapterRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.chapters {
		if c.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}
