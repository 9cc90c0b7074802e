package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"folio/internal/config"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
	"folio/internal/repository/postgres"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed templates")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// Destructive flags stay out of production.
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Info("dropping all tables")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	logger.Info("ensuring database schema", "prefix", cfg.TablePrefix)
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		logger.Info("schema setup complete")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	if err := seedTemplates(ctx, postgres.NewTemplateRepository(repoConfig), logger); err != nil {
		log.Fatalf("Failed to seed templates: %v", err)
	}

	logger.Info("seeding complete")
}

// runSchema creates tables if they don't exist. The chapter order
// constraint is deferred so the delete-then-compact transaction can
// shift orders without transient collisions.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			title TEXT NOT NULL,
			genre TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT 'en',
			cover_url TEXT,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Projects + `_user_id_idx
			ON ` + tables.Projects + ` (user_id)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Chapters + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (project_id, sort_order) DEFERRABLE INITIALLY IMMEDIATE
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Chapters + `_project_id_idx
			ON ` + tables.Chapters + ` (project_id, sort_order)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Templates + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			font_family TEXT NOT NULL,
			font_size TEXT NOT NULL,
			line_height DOUBLE PRECISION NOT NULL,
			max_width INTEGER NOT NULL,
			alignment TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Artifacts + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			format TEXT NOT NULL,
			url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'completed',
			generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Artifacts + `_project_id_idx
			ON ` + tables.Artifacts + ` (project_id, generated_at DESC)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Entitlements + ` (
			user_id UUID PRIMARY KEY,
			tier TEXT NOT NULL DEFAULT 'free',
			ai_credits BIGINT NOT NULL DEFAULT 0 CHECK (ai_credits >= 0),
			lifetime_credits BIGINT NOT NULL DEFAULT 0,
			exports_this_period INTEGER NOT NULL DEFAULT 0,
			period_start TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Children before parents.
	for _, table := range []string{
		tables.Artifacts,
		tables.Chapters,
		tables.Entitlements,
		tables.Templates,
		tables.Projects,
	} {
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			return err
		}
	}
	return nil
}

// seedTemplates inserts the built-in style templates. Reseeding skips
// names that already exist.
func seedTemplates(ctx context.Context, templates repositories.TemplateRepository, logger *slog.Logger) error {
	builtin := []models.Template{
		{
			Name:       "Classic Serif",
			FontFamily: "Georgia, 'Times New Roman', serif",
			FontSize:   "12pt",
			LineHeight: 1.8,
			MaxWidth:   800,
			Alignment:  "justify",
		},
		{
			Name:       "Modern Sans",
			FontFamily: "'Helvetica Neue', Arial, sans-serif",
			FontSize:   "11pt",
			LineHeight: 1.6,
			MaxWidth:   720,
			Alignment:  "left",
		},
		{
			Name:       "Manuscript",
			FontFamily: "'Courier New', monospace",
			FontSize:   "12pt",
			LineHeight: 2.0,
			MaxWidth:   680,
			Alignment:  "left",
		},
	}

	for i := range builtin {
		if err := templates.Create(ctx, &builtin[i]); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				logger.Info("template already present", "name", builtin[i].Name)
				continue
			}
			return err
		}
		logger.Info("template seeded", "template_id", builtin[i].ID, "name", builtin[i].Name)
	}
	return nil
}
