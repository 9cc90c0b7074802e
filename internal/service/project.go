package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"folio/internal/config"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
	"folio/internal/domain/services"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	ledger      services.EntitlementLedger
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	ledger services.EntitlementLedger,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// CreateProject creates a project after the tier's project-count check.
// The check precedes the insert; a rejected request changes nothing.
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.ledger.EnsureAccount(ctx, req.UserID); err != nil {
		return nil, err
	}
	if err := s.ledger.CheckProjectLimit(ctx, req.UserID); err != nil {
		return nil, err
	}

	metadata := req.Metadata
	if metadata.Version == 0 {
		metadata.Version = models.MetadataVersion
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	project := &models.Project{
		UserID:   req.UserID,
		Title:    req.Title,
		Genre:    req.Genre,
		Language: language,
		Metadata: metadata,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"project_id", project.ID,
		"user_id", req.UserID,
		"title", project.Title)

	return project, nil
}

// GetProject retrieves a project scoped to its owner.
func (s *projectService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id, userID)
}

// ListProjects retrieves all projects for a user.
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projectRepo.List(ctx, userID)
}

// UpdateProject applies a partial update. Only fields the request
// carries change.
func (s *projectService) UpdateProject(ctx context.Context, id, userID string, req *services.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Genre != nil {
		project.Genre = *req.Genre
	}
	if req.Language != nil {
		project.Language = *req.Language
	}
	if req.Metadata != nil {
		metadata := *req.Metadata
		if metadata.Version == 0 {
			metadata.Version = models.MetadataVersion
		}
		project.Metadata = metadata
	}
	if req.CoverURL != nil {
		project.CoverURL = req.CoverURL
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "project_id", project.ID, "user_id", userID)
	return project, nil
}

// DeleteProject removes a project; chapters and artifact records
// cascade in the schema.
func (s *projectService) DeleteProject(ctx context.Context, id, userID string) error {
	if err := s.projectRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id, "user_id", userID)
	return nil
}

func (s *projectService) validateCreateRequest(req *services.CreateProjectRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxProjectTitleLength)),
		validation.Field(&req.Genre, validation.Length(0, 100)),
		validation.Field(&req.Language, validation.Length(0, 16)),
	); err != nil {
		return err
	}
	return validateMetadata(&req.Metadata)
}

func (s *projectService) validateUpdateRequest(req *services.UpdateProjectRequest) error {
	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, config.MaxProjectTitleLength)); err != nil {
			return fmt.Errorf("title: %v", err)
		}
	}
	if req.Metadata != nil {
		return validateMetadata(req.Metadata)
	}
	return nil
}

// validateMetadata checks the versioned publishing metadata struct.
// Parsed once at the boundary; downstream components trust it.
func validateMetadata(m *models.Metadata) error {
	if m.Version != 0 && m.Version != models.MetadataVersion {
		return fmt.Errorf("unsupported metadata version %d", m.Version)
	}
	if m.Price != nil {
		if m.Price.Amount < 0 {
			return fmt.Errorf("price amount cannot be negative")
		}
		if err := validation.Validate(m.Price.Currency, validation.Required, validation.Length(3, 3)); err != nil {
			return fmt.Errorf("price currency: %v", err)
		}
	}
	if m.AgeRangeMin != 0 || m.AgeRangeMax != 0 {
		if m.AgeRangeMin < 0 || m.AgeRangeMax < m.AgeRangeMin {
			return fmt.Errorf("invalid age range %d-%d", m.AgeRangeMin, m.AgeRangeMax)
		}
	}
	if m.SeriesNumber < 0 {
		return fmt.Errorf("series number cannot be negative")
	}
	return nil
}
