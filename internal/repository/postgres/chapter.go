package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// PostgresChapterRepository implements the ChapterRepository interface
type PostgresChapterRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewChapterRepository creates a new chapter repository
func NewChapterRepository(config *RepositoryConfig) repositories.ChapterRepository {
	return &PostgresChapterRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts the chapter with the next sort order in its project.
// Order assignment and insert are one statement; the unique
// (project_id, sort_order) constraint rejects the loser of a
// concurrent race, surfaced as a conflict.
func (r *PostgresChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, title, content, status, word_count, sort_order)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM %s WHERE project_id = $1))
		RETURNING id, sort_order, created_at, updated_at
	`, r.tables.Chapters, r.tables.Chapters)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		chapter.ProjectID,
		chapter.Title,
		chapter.Content,
		chapter.Status,
		chapter.WordCount,
	).Scan(&chapter.ID, &chapter.SortOrder, &chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "concurrent chapter create, retry",
				ResourceType: "chapter",
			}
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", chapter.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create chapter: %w", err)
	}

	return nil
}

// GetByID retrieves a chapter scoped to its project.
func (r *PostgresChapterRepository) GetByID(ctx context.Context, id, projectID string) (*models.Chapter, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, title, content, sort_order, status, word_count, created_at, updated_at
		FROM %s
		WHERE id = $1 AND project_id = $2
	`, r.tables.Chapters)

	var chapter models.Chapter
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, id, projectID).Scan(
		&chapter.ID,
		&chapter.ProjectID,
		&chapter.Title,
		&chapter.Content,
		&chapter.SortOrder,
		&chapter.Status,
		&chapter.WordCount,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}

	return &chapter, nil
}

// ListByProject returns chapters in sort order.
func (r *PostgresChapterRepository) ListByProject(ctx context.Context, projectID string) ([]models.Chapter, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, title, content, sort_order, status, word_count, created_at, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY sort_order ASC
	`, r.tables.Chapters)

	q := GetExecutor(ctx, r.pool)
	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var chapter models.Chapter
		err := rows.Scan(
			&chapter.ID,
			&chapter.ProjectID,
			&chapter.Title,
			&chapter.Content,
			&chapter.SortOrder,
			&chapter.Status,
			&chapter.WordCount,
			&chapter.CreatedAt,
			&chapter.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}

	if chapters == nil {
		chapters = []models.Chapter{}
	}
	return chapters, nil
}

// Update rewrites the mutable columns. Sort order is repository-managed
// and never written here.
func (r *PostgresChapterRepository) Update(ctx context.Context, chapter *models.Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, content = $4, status = $5, word_count = $6, updated_at = now()
		WHERE id = $1 AND project_id = $2
		RETURNING sort_order, updated_at
	`, r.tables.Chapters)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		chapter.ID,
		chapter.ProjectID,
		chapter.Title,
		chapter.Content,
		chapter.Status,
		chapter.WordCount,
	).Scan(&chapter.SortOrder, &chapter.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("chapter %s: %w", chapter.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update chapter: %w", err)
	}

	return nil
}

// Delete removes the chapter and shifts every later chapter's order
// down by one. Callers run it inside ExecTx so the two statements
// commit together.
func (r *PostgresChapterRepository) Delete(ctx context.Context, id, projectID string) error {
	q := GetExecutor(ctx, r.pool)

	deleteQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND project_id = $2
		RETURNING sort_order
	`, r.tables.Chapters)

	var removedOrder int
	if err := q.QueryRow(ctx, deleteQuery, id, projectID).Scan(&removedOrder); err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete chapter: %w", err)
	}

	compactQuery := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = sort_order - 1
		WHERE project_id = $1 AND sort_order > $2
	`, r.tables.Chapters)

	if _, err := q.Exec(ctx, compactQuery, projectID, removedOrder); err != nil {
		return fmt.Errorf("compact chapter orders: %w", err)
	}

	return nil
}

// CountByProject returns the number of chapters in a project.
func (r *PostgresChapterRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE project_id = $1`, r.tables.Chapters)

	var count int
	q := GetExecutor(ctx, r.pool)
	if err := q.QueryRow(ctx, query, projectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return count, nil
}
