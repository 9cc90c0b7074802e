// Package export coordinates a single export run: entitlement checks,
// deterministic assembly, format rendering, object persistence and the
// write-once artifact record.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"folio/internal/assemble"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
	"folio/internal/domain/services"
	formats "folio/internal/export"
	"folio/internal/storage"
)

// Orchestrator implements services.ExportService as the state machine
// Validating -> Assembling -> Persisting -> Completed. Rejections
// happen only while validating; failures only while assembling or
// persisting. Nothing before Persisting mutates any state, so a failed
// or rejected export leaves no artifact and no counter change.
type Orchestrator struct {
	projects  repositories.ProjectRepository
	chapters  repositories.ChapterRepository
	templates repositories.TemplateRepository
	artifacts repositories.ArtifactRepository
	ledger    services.EntitlementLedger
	assembler *assemble.Assembler
	renderers *formats.Registry
	store     storage.ObjectStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrchestrator creates the export orchestrator. The clock is
// injected so artifact keys and timestamps are reproducible in tests.
func NewOrchestrator(
	projects repositories.ProjectRepository,
	chapters repositories.ChapterRepository,
	templates repositories.TemplateRepository,
	artifacts repositories.ArtifactRepository,
	ledger services.EntitlementLedger,
	assembler *assemble.Assembler,
	renderers *formats.Registry,
	store storage.ObjectStore,
	logger *slog.Logger,
	now func() time.Time,
) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		projects:  projects,
		chapters:  chapters,
		templates: templates,
		artifacts: artifacts,
		ledger:    ledger,
		assembler: assembler,
		renderers: renderers,
		store:     store,
		logger:    logger,
		now:       now,
	}
}

var _ services.ExportService = (*Orchestrator)(nil)

// Export runs one export to completion. Resubmitting after a failure
// is safe: assembly is pure and artifact keys carry a fresh timestamp.
func (o *Orchestrator) Export(ctx context.Context, req *services.ExportRequest) (*models.ExportArtifact, error) {
	log := o.logger.With("user_id", req.UserID, "project_id", req.ProjectID, "format", req.Format)

	// Validating
	log.Debug("export state", "state", services.ExportStateValidating)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Format, validation.Required, validation.By(validFormat)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	project, err := o.projects.GetByID(ctx, req.ProjectID, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := o.ledger.CheckExportFormat(ctx, req.UserID, req.Format); err != nil {
		log.Info("export rejected", "state", services.ExportStateRejected, "reason", err.Error())
		return nil, err
	}
	if err := o.ledger.CheckExportLimit(ctx, req.UserID); err != nil {
		log.Info("export rejected", "state", services.ExportStateRejected, "reason", err.Error())
		return nil, err
	}

	var template *models.Template
	if req.TemplateID != nil && *req.TemplateID != "" {
		template, err = o.templates.GetByID(ctx, *req.TemplateID)
		if err != nil {
			return nil, err
		}
	}

	limits, err := o.ledger.TierLimits(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	chapters, err := o.chapters.ListByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	// Assembling
	log.Debug("export state", "state", services.ExportStateAssembling)

	doc := o.assembleDocument(project, chapters, template, limits.Watermark)

	renderer, err := o.renderers.Get(req.Format)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	data, err := renderer.Render(ctx, doc)
	if err != nil {
		log.Error("export failed", "state", services.ExportStateFailed, "error", err)
		return nil, fmt.Errorf("render %s: %w", req.Format, err)
	}

	// Persisting
	log.Debug("export state", "state", services.ExportStatePersisting)

	key := fmt.Sprintf("%s-%d.%s", project.ID, doc.GeneratedAt.Unix(), renderer.Extension())
	url, err := o.store.Put(ctx, storage.BucketExports, key, data, renderer.ContentType())
	if err != nil {
		log.Error("export failed", "state", services.ExportStateFailed, "error", err)
		return nil, &domain.PersistenceError{Message: "store export artifact", Err: err}
	}

	artifact := &models.ExportArtifact{
		ProjectID:   project.ID,
		Format:      req.Format,
		URL:         url,
		Status:      models.ArtifactStatusCompleted,
		GeneratedAt: doc.GeneratedAt,
	}
	if err := o.artifacts.Create(ctx, artifact); err != nil {
		log.Error("export failed", "state", services.ExportStateFailed, "error", err)
		return nil, &domain.PersistenceError{Message: "record export artifact", Err: err}
	}

	if err := o.ledger.RecordExport(ctx, req.UserID); err != nil {
		// The artifact exists; the counter lags by one at worst.
		log.Warn("export counter not recorded", "error", err)
	}

	log.Info("export completed",
		"state", services.ExportStateCompleted,
		"artifact_id", artifact.ID,
		"bytes", len(data))

	return artifact, nil
}

// ListArtifacts returns a project's artifacts newest first, scoped to
// the owner.
func (o *Orchestrator) ListArtifacts(ctx context.Context, projectID, userID string) ([]models.ExportArtifact, error) {
	if _, err := o.projects.GetByID(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return o.artifacts.ListByProject(ctx, projectID)
}

func (o *Orchestrator) assembleDocument(project *models.Project, chapters []models.Chapter, template *models.Template, watermark bool) *formats.Document {
	html := o.assembler.Assemble(assemble.Input{
		Project:   project,
		Chapters:  chapters,
		Template:  template,
		Watermark: watermark,
	})

	chapterHTML := make([]string, len(chapters))
	for i, ch := range chapters {
		chapterHTML[i] = o.assembler.ChapterHTML(ch)
	}

	return &formats.Document{
		Project:     project,
		Chapters:    chapters,
		HTML:        html,
		ChapterHTML: chapterHTML,
		Style:       assemble.ResolveStyle(template),
		Watermark:   watermark,
		GeneratedAt: o.now().UTC(),
	}
}

func validFormat(value any) error {
	format, _ := value.(models.ExportFormat)
	if !format.Valid() {
		return errors.New("unknown export format")
	}
	return nil
}
