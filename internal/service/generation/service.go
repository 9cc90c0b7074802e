// Package generation implements AI-assisted drafting. Every call is
// paid for from the entitlement ledger before the provider is touched;
// credits come back only when the provider itself fails, never when
// the caller cancels.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"folio/internal/analysis"
	"folio/internal/config"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
	"folio/internal/domain/services"
	"folio/internal/generation"
	"folio/internal/queue"
)

type generationService struct {
	projects repositories.ProjectRepository
	chapters repositories.ChapterRepository
	ledger   services.EntitlementLedger
	provider generation.Provider
	analyzer *analysis.Analyzer
	jobs     queue.Enqueuer
	logger   *slog.Logger
}

// NewService creates the generation service.
func NewService(
	projects repositories.ProjectRepository,
	chapters repositories.ChapterRepository,
	ledger services.EntitlementLedger,
	provider generation.Provider,
	analyzer *analysis.Analyzer,
	jobs queue.Enqueuer,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		projects: projects,
		chapters: chapters,
		ledger:   ledger,
		provider: provider,
		analyzer: analyzer,
		jobs:     jobs,
		logger:   logger,
	}
}

// Complete runs a one-shot generation. The credit is consumed before
// the provider call and refunded only on a provider-side failure.
func (s *generationService) Complete(ctx context.Context, req *services.CompleteRequest) (string, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Prompt, validation.Required, validation.Length(1, config.MaxPromptLength)),
	); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.ledger.EnsureAccount(ctx, req.UserID); err != nil {
		return "", err
	}
	if _, err := s.ledger.ConsumeCredits(ctx, req.UserID, services.GenerationCost); err != nil {
		return "", err
	}

	text, err := s.provider.Complete(ctx, &generation.Request{
		Prompt:  req.Prompt,
		Context: req.Context,
	})
	if err != nil {
		s.refundOnProviderFailure(ctx, req.UserID, err)
		return "", err
	}

	s.logger.Info("generation completed",
		"user_id", req.UserID,
		"provider", s.provider.Name(),
		"chars", len(text))
	return text, nil
}

// StreamIntoChapter streams a completion to the returned channel and,
// on success, splices the accumulated text into the chapter at the
// snapshot span. The splice lands only if the chapter content still
// matches the snapshot; otherwise the generated text is discarded and
// the final fragment carries a stale-snapshot error.
func (s *generationService) StreamIntoChapter(ctx context.Context, req *services.StreamRequest) (<-chan services.Fragment, error) {
	if err := s.validateStreamRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetByID(ctx, req.ProjectID, req.UserID); err != nil {
		return nil, err
	}
	chapter, err := s.chapters.GetByID(ctx, req.ChapterID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	// Fail fast before spending a credit on text that cannot land.
	if chapter.Content != req.SnapshotText {
		return nil, &domain.StaleSnapshotError{ChapterID: req.ChapterID}
	}

	if _, err := s.ledger.EnsureAccount(ctx, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.ledger.ConsumeCredits(ctx, req.UserID, services.GenerationCost); err != nil {
		return nil, err
	}

	chunks, err := s.provider.Stream(ctx, &generation.Request{
		Prompt:  req.Prompt,
		Context: req.SnapshotText,
	})
	if err != nil {
		s.refundOnProviderFailure(ctx, req.UserID, err)
		return nil, err
	}

	out := make(chan services.Fragment)
	go s.consume(ctx, req, chunks, out)
	return out, nil
}

func (s *generationService) consume(ctx context.Context, req *services.StreamRequest, chunks <-chan generation.Chunk, out chan<- services.Fragment) {
	defer close(out)

	// Once the client disconnects the handler stops reading, so every
	// send races against ctx. Fragments for a dead reader are dropped;
	// accumulation and the splice carry on regardless.
	send := func(f services.Fragment) {
		select {
		case out <- f:
		case <-ctx.Done():
		}
	}

	var generated []byte
	for chunk := range chunks {
		if chunk.Err != nil {
			s.refundOnProviderFailure(ctx, req.UserID, chunk.Err)
			send(services.Fragment{Done: true, Err: chunk.Err})
			return
		}
		generated = append(generated, chunk.Text...)
		send(services.Fragment{Text: chunk.Text})
	}

	// The caller already paid for this text; a dropped connection must
	// not lose the splice.
	spliceCtx := context.WithoutCancel(ctx)
	if err := s.applySplice(spliceCtx, req, string(generated)); err != nil {
		send(services.Fragment{Done: true, Err: err})
		return
	}
	send(services.Fragment{Done: true})
}

// applySplice revalidates the snapshot against current content and
// writes the spliced chapter. The recheck covers edits that landed
// while the stream was in flight.
func (s *generationService) applySplice(ctx context.Context, req *services.StreamRequest, generated string) error {
	chapter, err := s.chapters.GetByID(ctx, req.ChapterID, req.ProjectID)
	if err != nil {
		return err
	}
	if chapter.Content != req.SnapshotText {
		s.logger.Info("splice rejected, snapshot stale",
			"chapter_id", req.ChapterID,
			"user_id", req.UserID)
		return &domain.StaleSnapshotError{ChapterID: req.ChapterID}
	}

	chapter.Content = splice(chapter.Content, req.SnapshotStart, req.SnapshotEnd, generated)
	chapter.WordCount = s.analyzer.CountWords(chapter.Content)
	chapter.Status = models.ChapterStatusAIGenerated

	if err := s.chapters.Update(ctx, chapter); err != nil {
		return err
	}

	if err := s.jobs.EnqueueChapterAnalysis(ctx, req.ProjectID, req.ChapterID); err != nil {
		// The splice is committed; a missed analysis job only leaves a
		// word count that the next edit recomputes.
		s.logger.Warn("enqueue analysis failed", "chapter_id", req.ChapterID, "error", err)
	}

	s.logger.Info("generation spliced",
		"chapter_id", req.ChapterID,
		"user_id", req.UserID,
		"provider", s.provider.Name(),
		"chars", len(generated))
	return nil
}

// refundOnProviderFailure returns the generation credit when the error
// is a confirmed provider failure. Cancellations and timeouts on the
// caller's side are not refunded.
func (s *generationService) refundOnProviderFailure(ctx context.Context, userID string, err error) {
	var provErr *generation.ProviderError
	if !errors.As(err, &provErr) {
		return
	}

	// The request context may already be cancelled; the refund still
	// has to land.
	refundCtx := context.WithoutCancel(ctx)
	if _, refundErr := s.ledger.RefundCredits(refundCtx, userID, services.GenerationCost); refundErr != nil {
		s.logger.Error("credit refund failed", "user_id", userID, "error", refundErr)
		return
	}
	s.logger.Info("generation credit refunded",
		"user_id", userID,
		"provider", provErr.Provider)
}

func (s *generationService) validateStreamRequest(req *services.StreamRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.ChapterID, validation.Required),
		validation.Field(&req.Prompt, validation.Required, validation.Length(1, config.MaxPromptLength)),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !validSpan(req.SnapshotText, req.SnapshotStart, req.SnapshotEnd) {
		return &domain.ValidationError{Message: "snapshot span is out of bounds"}
	}
	return nil
}
