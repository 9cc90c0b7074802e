package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"folio/internal/analysis"
	"folio/internal/convert"
	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/services"
	"folio/internal/repository/memory"
)

type chapterEnv struct {
	svc      services.ChapterService
	projects *memory.ProjectRepository
	chapters *memory.ChapterRepository
}

func newChapterEnv(t *testing.T) *chapterEnv {
	t.Helper()

	projects := memory.NewProjectRepository()
	chapters := memory.NewChapterRepository()
	ledger := newTestLedger(t, projects)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewChapterService(
		chapters, projects, memory.NewTxManager(),
		ledger, analysis.NewAnalyzer(), convert.NewRegistry(), logger,
	)

	if _, err := ledger.EnsureAccount(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	return &chapterEnv{svc: svc, projects: projects, chapters: chapters}
}

func (e *chapterEnv) seedProject(t *testing.T) *models.Project {
	t.Helper()
	project := &models.Project{
		UserID:   "u1",
		Title:    "Draft Novel",
		Language: "en",
		Metadata: models.Metadata{Version: models.MetadataVersion},
	}
	if err := e.projects.Create(context.Background(), project); err != nil {
		t.Fatal(err)
	}
	return project
}

func TestCreateChapterAssignsOrderAndWordCount(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	first, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Title:     "One",
		Content:   "Exactly four plain words.",
	})
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}
	if first.SortOrder != 1 {
		t.Errorf("sort order = %d, want 1", first.SortOrder)
	}
	if first.WordCount != 4 {
		t.Errorf("word count = %d, want 4", first.WordCount)
	}
	if first.Status != models.ChapterStatusDraft {
		t.Errorf("status = %s, want draft default", first.Status)
	}

	second, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Title:     "Two",
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.SortOrder != 2 {
		t.Errorf("second sort order = %d, want 2", second.SortOrder)
	}
}

func TestCreateChapterEnforcesTierLimit(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	// Free tier allows 30 chapters per project.
	for i := 0; i < 30; i++ {
		if _, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
			ProjectID: project.ID,
			UserID:    "u1",
			Title:     "Chapter",
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	_, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Title:     "Over the cap",
	})
	if !errors.Is(err, domain.ErrLimitExceeded) {
		t.Fatalf("err = %v, want LimitExceeded", err)
	}
}

func TestUpdateChapterContentRecountsAndFlipsStatus(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	chapter, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Title:     "One",
		Content:   "old text",
		Status:    models.ChapterStatusAIGenerated,
	})
	if err != nil {
		t.Fatal(err)
	}

	content := "three new words"
	updated, err := env.svc.UpdateChapter(ctx, chapter.ID, project.ID, "u1", &services.UpdateChapterRequest{
		Content: &content,
	})
	if err != nil {
		t.Fatalf("UpdateChapter: %v", err)
	}
	if updated.WordCount != 3 {
		t.Errorf("word count = %d, want 3", updated.WordCount)
	}
	// A human edit to machine text reclassifies the chapter.
	if updated.Status != models.ChapterStatusEdited {
		t.Errorf("status = %s, want edited", updated.Status)
	}
}

func TestDeleteChapterCompactsOrder(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		ch, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
			ProjectID: project.ID,
			UserID:    "u1",
			Title:     title,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, ch.ID)
	}

	if err := env.svc.DeleteChapter(ctx, ids[1], project.ID, "u1"); err != nil {
		t.Fatalf("DeleteChapter: %v", err)
	}

	chapters, err := env.svc.ListChapters(ctx, project.ID, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(chapters))
	}
	for i, ch := range chapters {
		if ch.SortOrder != i+1 {
			t.Errorf("chapter %q order = %d, want %d", ch.Title, ch.SortOrder, i+1)
		}
	}
	if chapters[0].Title != "One" || chapters[1].Title != "Three" {
		t.Errorf("order = %q, %q", chapters[0].Title, chapters[1].Title)
	}
}

func TestChapterOwnerScoping(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	chapter, err := env.svc.CreateChapter(ctx, &services.CreateChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Title:     "One",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.svc.GetChapter(ctx, chapter.ID, project.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get: err = %v, want NotFound", err)
	}
	if err := env.svc.DeleteChapter(ctx, chapter.ID, project.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete: err = %v, want NotFound", err)
	}
}

func TestImportChapterMarkdown(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	chapter, err := env.svc.ImportChapter(ctx, &services.ImportChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Filename:  "chapter-one.md",
		Data:      []byte("# Arrival\n\nThe train was *late* again."),
	})
	if err != nil {
		t.Fatalf("ImportChapter: %v", err)
	}
	if chapter.Title != "chapter-one" {
		t.Errorf("title = %q, want filename stem", chapter.Title)
	}
	if !strings.Contains(chapter.Content, "*late*") {
		t.Errorf("markdown content altered: %q", chapter.Content)
	}
	if chapter.WordCount == 0 {
		t.Error("imported chapter has no word count")
	}
}

func TestImportChapterFrontmatterOverridesTitle(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	data := []byte("---\ntitle: The Long Night\nstatus: edited\n---\nIt began with rain.")
	chapter, err := env.svc.ImportChapter(ctx, &services.ImportChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Filename:  "draft-03.md",
		Data:      data,
	})
	if err != nil {
		t.Fatalf("ImportChapter: %v", err)
	}
	if chapter.Title != "The Long Night" {
		t.Errorf("title = %q, want frontmatter title", chapter.Title)
	}
	if chapter.Status != models.ChapterStatusEdited {
		t.Errorf("status = %q, want edited", chapter.Status)
	}
	if strings.Contains(chapter.Content, "---") {
		t.Errorf("frontmatter block leaked into content: %q", chapter.Content)
	}
	if !strings.Contains(chapter.Content, "It began with rain.") {
		t.Errorf("body lost: %q", chapter.Content)
	}
}

func TestImportChapterHTMLConverts(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	chapter, err := env.svc.ImportChapter(ctx, &services.ImportChapterRequest{
		ProjectID: project.ID,
		UserID:    "u1",
		Filename:  "upload.html",
		Data:      []byte("<h1>Arrival</h1><p>The train was <em>late</em>.</p><script>alert(1)</script>"),
	})
	if err != nil {
		t.Fatalf("ImportChapter: %v", err)
	}
	if strings.Contains(chapter.Content, "<script") || strings.Contains(chapter.Content, "alert(1)") {
		t.Errorf("script survived conversion: %q", chapter.Content)
	}
	if !strings.Contains(chapter.Content, "# Arrival") {
		t.Errorf("heading not converted to markup: %q", chapter.Content)
	}
}

func TestImportChapterRejections(t *testing.T) {
	env := newChapterEnv(t)
	ctx := context.Background()
	project := env.seedProject(t)

	tests := []struct {
		name string
		req  *services.ImportChapterRequest
	}{
		{"no filename", &services.ImportChapterRequest{ProjectID: project.ID, UserID: "u1", Data: []byte("x")}},
		{"empty file", &services.ImportChapterRequest{ProjectID: project.ID, UserID: "u1", Filename: "a.md"}},
		{"unsupported extension", &services.ImportChapterRequest{ProjectID: project.ID, UserID: "u1", Filename: "a.docx", Data: []byte("x")}},
		{"oversized", &services.ImportChapterRequest{ProjectID: project.ID, UserID: "u1", Filename: "a.txt",
			Data: make([]byte, 1<<20+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.ImportChapter(ctx, tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want Validation", err)
			}
		})
	}
}
