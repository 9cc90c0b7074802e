package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"folio/internal/analysis"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/services"
	"folio/internal/generation"
	"folio/internal/repository/memory"
	"folio/internal/service/entitlement"
	"folio/internal/tier"
)

// brokenProvider fails every call with a provider-side error.
type brokenProvider struct{}

func (brokenProvider) Name() string { return "broken" }

func (brokenProvider) Complete(ctx context.Context, req *generation.Request) (string, error) {
	return "", &generation.ProviderError{Provider: "broken", Err: errors.New("upstream 500")}
}

func (p brokenProvider) Stream(ctx context.Context, req *generation.Request) (<-chan generation.Chunk, error) {
	ch := make(chan generation.Chunk, 1)
	ch <- generation.Chunk{Err: &generation.ProviderError{Provider: "broken", Err: errors.New("upstream 500")}}
	close(ch)
	return ch, nil
}

// cancelledProvider mimics the caller hanging up mid-call.
type cancelledProvider struct{}

func (cancelledProvider) Name() string { return "cancelled" }

func (cancelledProvider) Complete(ctx context.Context, req *generation.Request) (string, error) {
	return "", context.Canceled
}

func (p cancelledProvider) Stream(ctx context.Context, req *generation.Request) (<-chan generation.Chunk, error) {
	ch := make(chan generation.Chunk, 1)
	ch <- generation.Chunk{Err: context.Canceled}
	close(ch)
	return ch, nil
}

// fixedProvider streams a fixed text and is indifferent to the
// caller's context, like a provider whose response is already in
// flight when the client hangs up.
type fixedProvider struct{ text string }

func (p fixedProvider) Name() string { return "fixed" }

func (p fixedProvider) Complete(ctx context.Context, req *generation.Request) (string, error) {
	return p.text, nil
}

func (p fixedProvider) Stream(ctx context.Context, req *generation.Request) (<-chan generation.Chunk, error) {
	ch := make(chan generation.Chunk, 1)
	ch <- generation.Chunk{Text: p.text}
	close(ch)
	return ch, nil
}

type captureEnqueuer struct {
	chapterIDs []string
}

func (c *captureEnqueuer) EnqueueChapterAnalysis(ctx context.Context, projectID, chapterID string) error {
	c.chapterIDs = append(c.chapterIDs, chapterID)
	return nil
}

type testEnv struct {
	svc      services.GenerationService
	ledger   *entitlement.Ledger
	projects *memory.ProjectRepository
	chapters *memory.ChapterRepository
	jobs     *captureEnqueuer
}

func newTestEnv(t *testing.T, provider generation.Provider) *testEnv {
	t.Helper()

	tiers, err := tier.NewRegistry()
	if err != nil {
		t.Fatalf("tier registry: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	projects := memory.NewProjectRepository()
	chapters := memory.NewChapterRepository()
	accounts := memory.NewEntitlementRepository()
	ledger := entitlement.NewLedger(accounts, projects, tiers, logger, clock)
	jobs := &captureEnqueuer{}

	svc := NewService(projects, chapters, ledger, provider, analysis.NewAnalyzer(), jobs, logger)

	return &testEnv{svc: svc, ledger: ledger, projects: projects, chapters: chapters, jobs: jobs}
}

func (e *testEnv) seedChapter(t *testing.T, userID, content string) (*models.Project, *models.Chapter) {
	t.Helper()
	ctx := context.Background()

	if _, err := e.ledger.EnsureAccount(ctx, userID); err != nil {
		t.Fatal(err)
	}

	project := &models.Project{UserID: userID, Title: "Draft", Language: "en",
		Metadata: models.Metadata{Version: models.MetadataVersion}}
	if err := e.projects.Create(ctx, project); err != nil {
		t.Fatal(err)
	}

	chapter := &models.Chapter{
		ProjectID: project.ID,
		Title:     "One",
		Content:   content,
		Status:    models.ChapterStatusDraft,
	}
	if err := e.chapters.Create(ctx, chapter); err != nil {
		t.Fatal(err)
	}
	return project, chapter
}

func (e *testEnv) balance(t *testing.T, userID string) int64 {
	t.Helper()
	account, err := e.ledger.Account(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	return account.AICredits
}

func drain(t *testing.T, fragments <-chan services.Fragment) (string, services.Fragment) {
	t.Helper()
	var b strings.Builder
	for frag := range fragments {
		if frag.Done {
			return b.String(), frag
		}
		b.WriteString(frag.Text)
	}
	t.Fatal("stream closed without a done fragment")
	return "", services.Fragment{}
}

func TestCompleteConsumesOneCredit(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())
	ctx := context.Background()
	env.seedChapter(t, "u1", "")
	before := env.balance(t, "u1")

	text, err := env.svc.Complete(ctx, &services.CompleteRequest{UserID: "u1", Prompt: "continue the scene"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text == "" {
		t.Error("empty completion")
	}
	if got := env.balance(t, "u1"); got != before-1 {
		t.Errorf("balance = %d, want %d", got, before-1)
	}
}

func TestCompleteRefundsOnProviderFailure(t *testing.T) {
	env := newTestEnv(t, brokenProvider{})
	ctx := context.Background()
	env.seedChapter(t, "u1", "")
	before := env.balance(t, "u1")

	_, err := env.svc.Complete(ctx, &services.CompleteRequest{UserID: "u1", Prompt: "continue"})
	var provErr *generation.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if got := env.balance(t, "u1"); got != before {
		t.Errorf("balance = %d, want %d after refund", got, before)
	}
}

func TestCompleteNoRefundOnCancellation(t *testing.T) {
	env := newTestEnv(t, cancelledProvider{})
	ctx := context.Background()
	env.seedChapter(t, "u1", "")
	before := env.balance(t, "u1")

	if _, err := env.svc.Complete(ctx, &services.CompleteRequest{UserID: "u1", Prompt: "continue"}); err == nil {
		t.Fatal("expected error")
	}
	if got := env.balance(t, "u1"); got != before-1 {
		t.Errorf("balance = %d, want %d, cancellation must not refund", got, before-1)
	}
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())

	_, err := env.svc.Complete(context.Background(), &services.CompleteRequest{UserID: "u1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}

func TestStreamSplicesAtSnapshotSpan(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())
	ctx := context.Background()
	content := "The door opened. PLACEHOLDER And then silence."
	project, chapter := env.seedChapter(t, "u1", content)

	start := strings.Index(content, "PLACEHOLDER")
	end := start + len("PLACEHOLDER")

	fragments, err := env.svc.StreamIntoChapter(ctx, &services.StreamRequest{
		UserID:        "u1",
		ProjectID:     project.ID,
		ChapterID:     chapter.ID,
		Prompt:        "replace the placeholder",
		SnapshotText:  content,
		SnapshotStart: start,
		SnapshotEnd:   end,
	})
	if err != nil {
		t.Fatalf("StreamIntoChapter: %v", err)
	}

	streamed, final := drain(t, fragments)
	if final.Err != nil {
		t.Fatalf("final fragment err: %v", final.Err)
	}
	if streamed == "" {
		t.Fatal("no text streamed")
	}

	updated, err := env.chapters.GetByID(ctx, chapter.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := "The door opened. " + streamed + " And then silence."
	if updated.Content != want {
		t.Errorf("content = %q, want %q", updated.Content, want)
	}
	if updated.Status != models.ChapterStatusAIGenerated {
		t.Errorf("status = %s, want ai-generated", updated.Status)
	}
	if updated.WordCount == 0 {
		t.Error("word count not recomputed")
	}
	if len(env.jobs.chapterIDs) != 1 || env.jobs.chapterIDs[0] != chapter.ID {
		t.Errorf("analysis jobs = %v, want one for %s", env.jobs.chapterIDs, chapter.ID)
	}
}

func TestStreamRejectsStaleSnapshotUpfront(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())
	ctx := context.Background()
	project, chapter := env.seedChapter(t, "u1", "current text")
	before := env.balance(t, "u1")

	_, err := env.svc.StreamIntoChapter(ctx, &services.StreamRequest{
		UserID:       "u1",
		ProjectID:    project.ID,
		ChapterID:    chapter.ID,
		Prompt:       "continue",
		SnapshotText: "older text",
	})
	if !errors.Is(err, domain.ErrStaleSnapshot) {
		t.Fatalf("err = %v, want StaleSnapshot", err)
	}
	if got := env.balance(t, "u1"); got != before {
		t.Errorf("balance = %d, want %d, rejected stream must not charge", got, before)
	}
}

func TestStreamDiscardsSpliceWhenEditedMidFlight(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())
	ctx := context.Background()
	content := "original text"
	project, chapter := env.seedChapter(t, "u1", content)

	fragments, err := env.svc.StreamIntoChapter(ctx, &services.StreamRequest{
		UserID:        "u1",
		ProjectID:     project.ID,
		ChapterID:     chapter.ID,
		Prompt:        "continue",
		SnapshotText:  content,
		SnapshotStart: len([]rune(content)),
		SnapshotEnd:   len([]rune(content)),
	})
	if err != nil {
		t.Fatalf("StreamIntoChapter: %v", err)
	}

	// Concurrent edit lands while fragments stream.
	chapter.Content = "edited elsewhere"
	if err := env.chapters.Update(ctx, chapter); err != nil {
		t.Fatal(err)
	}

	_, final := drain(t, fragments)
	if !errors.Is(final.Err, domain.ErrStaleSnapshot) {
		t.Fatalf("final err = %v, want StaleSnapshot", final.Err)
	}

	updated, err := env.chapters.GetByID(ctx, chapter.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Content != "edited elsewhere" {
		t.Errorf("content = %q, the concurrent edit must win", updated.Content)
	}
}

func TestStreamFinishesSpliceAfterClientDisconnect(t *testing.T) {
	env := newTestEnv(t, fixedProvider{text: "the rest of the scene"})
	content := "Opening line. "
	project, chapter := env.seedChapter(t, "u1", content)

	ctx, cancel := context.WithCancel(context.Background())
	end := len([]rune(content))
	fragments, err := env.svc.StreamIntoChapter(ctx, &services.StreamRequest{
		UserID:        "u1",
		ProjectID:     project.ID,
		ChapterID:     chapter.ID,
		Prompt:        "continue",
		SnapshotText:  content,
		SnapshotStart: end,
		SnapshotEnd:   end,
	})
	if err != nil {
		t.Fatalf("StreamIntoChapter: %v", err)
	}

	// The client hangs up without reading a single fragment.
	cancel()

	// The worker must wind down on its own; channel close is the
	// signal that it did.
	timeout := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-fragments:
			open = ok
		case <-timeout:
			t.Fatal("stream worker still running after client disconnect")
		}
	}

	updated, err := env.chapters.GetByID(context.Background(), chapter.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if want := content + "the rest of the scene"; updated.Content != want {
		t.Errorf("content = %q, want %q, splice must land for a paid stream", updated.Content, want)
	}
	if updated.Status != models.ChapterStatusAIGenerated {
		t.Errorf("status = %s, want ai-generated", updated.Status)
	}
	if len(env.jobs.chapterIDs) != 1 {
		t.Errorf("analysis jobs = %v, want one", env.jobs.chapterIDs)
	}
}

func TestStreamRefundsOnProviderFailure(t *testing.T) {
	env := newTestEnv(t, brokenProvider{})
	ctx := context.Background()
	project, chapter := env.seedChapter(t, "u1", "text")
	before := env.balance(t, "u1")

	fragments, err := env.svc.StreamIntoChapter(ctx, &services.StreamRequest{
		UserID:       "u1",
		ProjectID:    project.ID,
		ChapterID:    chapter.ID,
		Prompt:       "continue",
		SnapshotText: "text",
		SnapshotEnd:  0,
	})
	if err != nil {
		t.Fatalf("StreamIntoChapter: %v", err)
	}

	_, final := drain(t, fragments)
	var provErr *generation.ProviderError
	if !errors.As(final.Err, &provErr) {
		t.Fatalf("final err = %v, want ProviderError", final.Err)
	}
	if got := env.balance(t, "u1"); got != before {
		t.Errorf("balance = %d, want %d after refund", got, before)
	}
}

func TestStreamRejectsBadSpan(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())

	_, err := env.svc.StreamIntoChapter(context.Background(), &services.StreamRequest{
		UserID:        "u1",
		ProjectID:     "p1",
		ChapterID:     "c1",
		Prompt:        "continue",
		SnapshotText:  "short",
		SnapshotStart: 2,
		SnapshotEnd:   99,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}

func TestStreamNotOwnedProject(t *testing.T) {
	env := newTestEnv(t, generation.NewLoremProvider())
	ctx := context.Background()
	project, chapter := env.seedChapter(t, "u1", "text")

	if _, err := env.ledger.EnsureAccount(ctx, "u2"); err != nil {
		t.Fatal(err)
	}
	_, err := env.svc.StreamIntoChapter(ctx, &services.StreamRequest{
		UserID:       "u2",
		ProjectID:    project.ID,
		ChapterID:    chapter.ID,
		Prompt:       "continue",
		SnapshotText: "text",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestSpliceRuneOffsets(t *testing.T) {
	// Offsets count runes, so multi-byte content splices cleanly.
	got := splice("héllo wörld", 6, 11, "there")
	if got != "héllo there" {
		t.Errorf("splice = %q, want %q", got, "héllo there")
	}
}
