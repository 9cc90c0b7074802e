package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process Enqueuer that dispatches jobs to
// registered handlers on a worker goroutine. Used in tests and when no
// Redis URL is configured.
type MemoryQueue struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	jobs     chan *Message
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewMemoryQueue creates an in-process queue.
func NewMemoryQueue(logger *slog.Logger) *MemoryQueue {
	return &MemoryQueue{
		handlers: make(map[string]Handler),
		jobs:     make(chan *Message, 128),
		logger:   logger,
	}
}

var _ Enqueuer = (*MemoryQueue)(nil)

// RegisterHandler sets the handler for a job type.
func (q *MemoryQueue) RegisterHandler(msgType string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[msgType] = handler
}

// Start runs the dispatch loop until the context ends.
func (q *MemoryQueue) Start(ctx context.Context) error {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-q.jobs:
				q.dispatch(ctx, msg)
			}
		}
	}()
	return nil
}

// Drain blocks until the dispatch loop has exited.
func (q *MemoryQueue) Drain() { q.wg.Wait() }

func (q *MemoryQueue) EnqueueChapterAnalysis(ctx context.Context, projectID, chapterID string) error {
	msg := &Message{
		ID:         uuid.NewString(),
		Type:       TypeChapterAnalysis,
		ProjectID:  projectID,
		ChapterID:  chapterID,
		EnqueuedAt: time.Now().UTC(),
	}

	select {
	case q.jobs <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) dispatch(ctx context.Context, msg *Message) {
	q.mu.RLock()
	handler, ok := q.handlers[msg.Type]
	q.mu.RUnlock()

	if !ok {
		q.logger.Warn("drop job with no handler", "type", msg.Type)
		return
	}
	if err := handler(ctx, msg); err != nil {
		q.logger.Error("job failed", "job_id", msg.ID, "error", err)
	}
}
