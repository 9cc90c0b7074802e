package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// PostgresTemplateRepository implements the TemplateRepository
// interface. Templates have no update path: once an artifact
// references one, its parameters must stay what they were.
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *RepositoryConfig) repositories.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, font_family, font_size, line_height, max_width, alignment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Templates)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		template.Name,
		template.FontFamily,
		template.FontSize,
		template.LineHeight,
		template.MaxWidth,
		template.Alignment,
	).Scan(&template.ID, &template.CreatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("template %q already exists", template.Name),
				ResourceType: "template",
			}
		}
		return fmt.Errorf("create template: %w", err)
	}

	return nil
}

func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, name, font_family, font_size, line_height, max_width, alignment, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Templates)

	var template models.Template
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.FontFamily,
		&template.FontSize,
		&template.LineHeight,
		&template.MaxWidth,
		&template.Alignment,
		&template.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	return &template, nil
}

func (r *PostgresTemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, name, font_family, font_size, line_height, max_width, alignment, created_at
		FROM %s
		ORDER BY name ASC
	`, r.tables.Templates)

	q := GetExecutor(ctx, r.pool)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var template models.Template
		err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.FontFamily,
			&template.FontSize,
			&template.LineHeight,
			&template.MaxWidth,
			&template.Alignment,
			&template.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	if templates == nil {
		templates = []models.Template{}
	}
	return templates, nil
}
