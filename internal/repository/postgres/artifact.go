package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// PostgresArtifactRepository implements the ArtifactRepository
// interface. Artifact rows are write-once; there is no UPDATE or
// DELETE statement in this file on purpose.
type PostgresArtifactRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(config *RepositoryConfig) repositories.ArtifactRepository {
	return &PostgresArtifactRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresArtifactRepository) Create(ctx context.Context, artifact *models.ExportArtifact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, format, url, status, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.tables.Artifacts)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		artifact.ProjectID,
		artifact.Format,
		artifact.URL,
		artifact.Status,
		artifact.GeneratedAt,
	).Scan(&artifact.ID)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", artifact.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create artifact: %w", err)
	}

	return nil
}

func (r *PostgresArtifactRepository) GetByID(ctx context.Context, id string) (*models.ExportArtifact, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, format, url, status, generated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Artifacts)

	var artifact models.ExportArtifact
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, id).Scan(
		&artifact.ID,
		&artifact.ProjectID,
		&artifact.Format,
		&artifact.URL,
		&artifact.Status,
		&artifact.GeneratedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get artifact: %w", err)
	}

	return &artifact, nil
}

// ListByProject returns artifacts newest first.
func (r *PostgresArtifactRepository) ListByProject(ctx context.Context, projectID string) ([]models.ExportArtifact, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, format, url, status, generated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY generated_at DESC
	`, r.tables.Artifacts)

	q := GetExecutor(ctx, r.pool)
	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []models.ExportArtifact
	for rows.Next() {
		var artifact models.ExportArtifact
		err := rows.Scan(
			&artifact.ID,
			&artifact.ProjectID,
			&artifact.Format,
			&artifact.URL,
			&artifact.Status,
			&artifact.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}

	if artifacts == nil {
		artifacts = []models.ExportArtifact{}
	}
	return artifacts, nil
}
