package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"folio/internal/analysis"
	"folio/internal/config"
	"folio/internal/convert"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
	"folio/internal/domain/services"
)

// chapterService implements the ChapterService interface
type chapterService struct {
	chapterRepo repositories.ChapterRepository
	projectRepo repositories.ProjectRepository
	txManager   repositories.TransactionManager
	ledger      services.EntitlementLedger
	analyzer    *analysis.Analyzer
	converters  *convert.Registry
	logger      *slog.Logger
}

// NewChapterService creates a new chapter service
func NewChapterService(
	chapterRepo repositories.ChapterRepository,
	projectRepo repositories.ProjectRepository,
	txManager repositories.TransactionManager,
	ledger services.EntitlementLedger,
	analyzer *analysis.Analyzer,
	converters *convert.Registry,
	logger *slog.Logger,
) services.ChapterService {
	return &chapterService{
		chapterRepo: chapterRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		ledger:      ledger,
		analyzer:    analyzer,
		converters:  converters,
		logger:      logger,
	}
}

// CreateChapter appends a chapter to a project. The repository assigns
// the sort order; the tier's chapter cap is checked first.
func (s *chapterService) CreateChapter(ctx context.Context, req *services.CreateChapterRequest) (*models.Chapter, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID, req.UserID); err != nil {
		return nil, err
	}

	count, err := s.chapterRepo.CountByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.CheckChapterLimit(ctx, req.UserID, count); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ChapterStatusDraft
	}

	chapter := &models.Chapter{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Content:   req.Content,
		Status:    status,
		WordCount: s.analyzer.CountWords(req.Content),
	}

	if err := s.chapterRepo.Create(ctx, chapter); err != nil {
		return nil, err
	}

	s.logger.Info("chapter created",
		"chapter_id", chapter.ID,
		"project_id", req.ProjectID,
		"sort_order", chapter.SortOrder,
		"words", chapter.WordCount)

	return chapter, nil
}

func (s *chapterService) GetChapter(ctx context.Context, id, projectID, userID string) (*models.Chapter, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.chapterRepo.GetByID(ctx, id, projectID)
}

func (s *chapterService) ListChapters(ctx context.Context, projectID, userID string) ([]models.Chapter, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.chapterRepo.ListByProject(ctx, projectID)
}

// UpdateChapter applies a partial update. A content change recomputes
// the word count in the same write.
func (s *chapterService) UpdateChapter(ctx context.Context, id, projectID, userID string, req *services.UpdateChapterRequest) (*models.Chapter, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.projectRepo.GetByID(ctx, projectID, userID); err != nil {
		return nil, err
	}

	chapter, err := s.chapterRepo.GetByID(ctx, id, projectID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		chapter.Title = *req.Title
	}
	if req.Content != nil {
		chapter.Content = *req.Content
		chapter.WordCount = s.analyzer.CountWords(*req.Content)
		if chapter.Status == models.ChapterStatusAIGenerated {
			chapter.Status = models.ChapterStatusEdited
		}
	}
	if req.Status != nil {
		chapter.Status = *req.Status
	}

	if err := s.chapterRepo.Update(ctx, chapter); err != nil {
		return nil, err
	}

	s.logger.Info("chapter updated", "chapter_id", id, "project_id", projectID)
	return chapter, nil
}

// DeleteChapter removes the chapter inside a transaction so the delete
// and the order compaction of later chapters commit together.
func (s *chapterService) DeleteChapter(ctx context.Context, id, projectID, userID string) error {
	if _, err := s.projectRepo.GetByID(ctx, projectID, userID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.chapterRepo.Delete(txCtx, id, projectID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("chapter deleted", "chapter_id", id, "project_id", projectID)
	return nil
}

// ImportChapter converts an uploaded file into chapter markup and
// creates a chapter from it. The converter is picked by extension.
func (s *chapterService) ImportChapter(ctx context.Context, req *services.ImportChapterRequest) (*models.Chapter, error) {
	if req.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrValidation)
	}
	if len(req.Data) > config.MaxImportFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, config.MaxImportFileSize)
	}

	content, err := s.converters.Convert(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	title := strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	if title == "" {
		title = "Imported chapter"
	}
	status := models.ChapterStatusDraft

	// A markdown frontmatter block overrides filename-derived metadata.
	if fm, body, ok := convert.SplitFrontmatter(content); ok {
		content = body
		if fm.Title != "" {
			title = fm.Title
		}
		if s := models.ChapterStatus(fm.Status); fm.Status != "" && s.Valid() {
			status = s
		}
	}

	return s.CreateChapter(ctx, &services.CreateChapterRequest{
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Title:     title,
		Content:   content,
		Status:    status,
	})
}

func (s *chapterService) validateCreateRequest(req *services.CreateChapterRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxChapterTitleLength)),
		validation.Field(&req.Status, validation.By(validChapterStatus)),
	)
}

func (s *chapterService) validateUpdateRequest(req *services.UpdateChapterRequest) error {
	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, config.MaxChapterTitleLength)); err != nil {
			return fmt.Errorf("title: %v", err)
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("unknown chapter status %q", *req.Status)
	}
	return nil
}

func validChapterStatus(value any) error {
	status, _ := value.(models.ChapterStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown chapter status %q", status)
	}
	return nil
}
