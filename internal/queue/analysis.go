package queue

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/analysis"
	"folio/internal/domain/repositories"
)

// ChapterAnalysisHandler recomputes a chapter's word count from its
// stored content. The recompute is a pure function of current content,
// so redelivered jobs converge on the same value.
type ChapterAnalysisHandler struct {
	chapters repositories.ChapterRepository
	analyzer *analysis.Analyzer
	logger   *slog.Logger
}

// NewChapterAnalysisHandler creates the handler.
func NewChapterAnalysisHandler(chapters repositories.ChapterRepository, analyzer *analysis.Analyzer, logger *slog.Logger) *ChapterAnalysisHandler {
	return &ChapterAnalysisHandler{chapters: chapters, analyzer: analyzer, logger: logger}
}

// Handle processes one analysis job.
func (h *ChapterAnalysisHandler) Handle(ctx context.Context, msg *Message) error {
	chapter, err := h.chapters.GetByID(ctx, msg.ChapterID, msg.ProjectID)
	if err != nil {
		// The chapter may have been deleted since enqueue; nothing to do.
		h.logger.Debug("analysis target gone", "chapter_id", msg.ChapterID)
		return nil
	}

	wordCount := h.analyzer.CountWords(chapter.Content)
	if wordCount == chapter.WordCount {
		return nil
	}

	chapter.WordCount = wordCount
	if err := h.chapters.Update(ctx, chapter); err != nil {
		return fmt.Errorf("update word count: %w", err)
	}

	h.logger.Debug("chapter analyzed",
		"chapter_id", chapter.ID,
		"words", wordCount,
		"reading_time", h.analyzer.ReadingTime(wordCount))
	return nil
}
