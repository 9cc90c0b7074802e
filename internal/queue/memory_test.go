package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"folio/internal/analysis"
	"folio/internal/domain/models"
	"folio/internal/repository/memory"
)

func TestMemoryQueueDispatches(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	q := NewMemoryQueue(logger)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	q.RegisterHandler(TypeChapterAnalysis, func(ctx context.Context, msg *Message) error {
		mu.Lock()
		got = append(got, msg.ChapterID)
		if len(got) == 2 {
			close(done)
		}
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := q.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if err := q.EnqueueChapterAnalysis(ctx, "p1", "c1"); err != nil {
		t.Fatal(err)
	}
	if err := q.EnqueueChapterAnalysis(ctx, "p1", "c2"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs not dispatched")
	}
}

func TestChapterAnalysisHandlerIsIdempotent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chapters := memory.NewChapterRepository()
	handler := NewChapterAnalysisHandler(chapters, analysis.NewAnalyzer(), logger)
	ctx := context.Background()

	ch := &models.Chapter{
		ProjectID: "p1",
		Title:     "Intro",
		Content:   "five words of plain prose",
		Status:    models.ChapterStatusDraft,
		// Stale count from before an edit.
		WordCount: 2,
	}
	if err := chapters.Create(ctx, ch); err != nil {
		t.Fatal(err)
	}

	msg := &Message{Type: TypeChapterAnalysis, ProjectID: "p1", ChapterID: ch.ID}

	// At-least-once delivery: run the same job twice.
	for i := 0; i < 2; i++ {
		if err := handler.Handle(ctx, msg); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}

	updated, err := chapters.GetByID(ctx, ch.ID, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if updated.WordCount != 5 {
		t.Errorf("word count = %d, want 5", updated.WordCount)
	}
}

func TestChapterAnalysisHandlerSkipsDeleted(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chapters := memory.NewChapterRepository()
	handler := NewChapterAnalysisHandler(chapters, analysis.NewAnalyzer(), logger)

	msg := &Message{Type: TypeChapterAnalysis, ProjectID: "p1", ChapterID: "gone"}
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Errorf("deleted chapter must not error: %v", err)
	}
}
