package services

import (
	"context"

	"folio/internal/domain/models"
)

// ExportState is a step in the export state machine. Transitions never
// skip a predecessor: Validating -> Assembling -> Persisting ->
// Completed, with Rejected reachable only from Validating and Failed
// only from Assembling or Persisting.
type ExportState string

const (
	ExportStateValidating ExportState = "validating"
	ExportStateAssembling ExportState = "assembling"
	ExportStatePersisting ExportState = "persisting"
	ExportStateCompleted  ExportState = "completed"
	ExportStateRejected   ExportState = "rejected"
	ExportStateFailed     ExportState = "failed"
)

// ExportRequest represents one export of a project.
type ExportRequest struct {
	UserID     string              `json:"-"`
	ProjectID  string              `json:"-"`
	Format     models.ExportFormat `json:"format"`
	TemplateID *string             `json:"template_id"`
}

// ExportService coordinates a single export: entitlement checks, then
// assembly, then persistence, then the immutable artifact record.
type ExportService interface {
	Export(ctx context.Context, req *ExportRequest) (*models.ExportArtifact, error)
	ListArtifacts(ctx context.Context, projectID, userID string) ([]models.ExportArtifact, error)
}
