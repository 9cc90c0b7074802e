// Package queue moves post-write analysis work off the request path.
// Jobs go through a Redis Streams consumer group with at-least-once
// delivery; handlers must therefore be idempotent. An in-process
// implementation backs tests and single-node dev.
package queue

import (
	"context"
	"time"
)

// Job types.
const (
	TypeChapterAnalysis = "chapter_analysis"
)

// Message is one queued job.
type Message struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProjectID  string    `json:"project_id"`
	ChapterID  string    `json:"chapter_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Handler processes one message. Returning an error leaves the message
// pending for redelivery.
type Handler func(ctx context.Context, msg *Message) error

// Enqueuer publishes jobs.
type Enqueuer interface {
	// EnqueueChapterAnalysis schedules a word-count and reading-time
	// recompute for the chapter.
	EnqueueChapterAnalysis(ctx context.Context, projectID, chapterID string) error
}
