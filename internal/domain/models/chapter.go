package models

import "time"

// ChapterStatus tags how a chapter's current content came to be.
type ChapterStatus string

const (
	ChapterStatusDraft       ChapterStatus = "draft"
	ChapterStatusAIGenerated ChapterStatus = "ai-generated"
	ChapterStatusEdited      ChapterStatus = "edited"
)

// Valid reports whether s is a known chapter status.
func (s ChapterStatus) Valid() bool {
	switch s {
	case ChapterStatusDraft, ChapterStatusAIGenerated, ChapterStatusEdited:
		return true
	}
	return false
}

// Chapter belongs to exactly one project. SortOrder is unique and
// contiguous within the project: it is assigned from a per-project
// counter at creation, and deletions compact the orders of later
// chapters so no gaps appear.
type Chapter struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"` // lightweight markup
	SortOrder int           `json:"sort_order"`
	Status    ChapterStatus `json:"status"`
	WordCount int           `json:"word_count"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
