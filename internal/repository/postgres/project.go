package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new project. Metadata is stored as JSONB.
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, genre, language, cover_url, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Projects)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		project.UserID,
		project.Title,
		project.Genre,
		project.Language,
		project.CoverURL,
		project.Metadata,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project %q already exists", project.Title),
				ResourceType: "project",
			}
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID, scoped to its owner.
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, genre, language, cover_url, metadata, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Projects)

	var project models.Project
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, id, userID).Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&project.Genre,
		&project.Language,
		&project.CoverURL,
		&project.Metadata,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

// List retrieves all projects for a user, ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, genre, language, cover_url, metadata, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Projects)

	q := GetExecutor(ctx, r.pool)
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Title,
			&project.Genre,
			&project.Language,
			&project.CoverURL,
			&project.Metadata,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Update rewrites the mutable columns of a project.
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, genre = $4, language = $5, cover_url = $6, metadata = $7, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`, r.tables.Projects)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		project.ID,
		project.UserID,
		project.Title,
		project.Genre,
		project.Language,
		project.CoverURL,
		project.Metadata,
	).Scan(&project.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

// Delete removes a project. Chapters cascade via the schema.
func (r *PostgresProjectRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Projects)

	q := GetExecutor(ctx, r.pool)
	tag, err := q.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CountByUser returns the number of projects owned by the user.
func (r *PostgresProjectRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, r.tables.Projects)

	var count int
	q := GetExecutor(ctx, r.pool)
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}
