package models

import "time"

// ExportFormat is a supported export artifact format.
type ExportFormat string

const (
	FormatHTML ExportFormat = "html"
	FormatPDF  ExportFormat = "pdf"
	FormatEPUB ExportFormat = "epub"
	FormatMOBI ExportFormat = "mobi"
)

// Valid reports whether f is a known export format.
func (f ExportFormat) Valid() bool {
	switch f {
	case FormatHTML, FormatPDF, FormatEPUB, FormatMOBI:
		return true
	}
	return false
}

// ArtifactStatus is the terminal status recorded on an artifact.
// Artifacts are only written after persistence succeeds, so the only
// stored status is completed; the in-flight states live in the
// orchestrator, not the record.
type ArtifactStatus string

const ArtifactStatusCompleted ArtifactStatus = "completed"

// ExportArtifact is the immutable record of one export. It is never
// mutated after creation; a re-export always creates a new record.
type ExportArtifact struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id"`
	Format      ExportFormat   `json:"format"`
	URL         string         `json:"url"`
	Status      ArtifactStatus `json:"status"`
	GeneratedAt time.Time      `json:"generated_at"`
}
