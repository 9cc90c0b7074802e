package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/services"
	"folio/internal/repository/memory"
	"folio/internal/service/entitlement"
	"folio/internal/tier"
)

func newTestLedger(t *testing.T, projects *memory.ProjectRepository) *entitlement.Ledger {
	t.Helper()
	tiers, err := tier.NewRegistry()
	if err != nil {
		t.Fatalf("tier registry: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return entitlement.NewLedger(memory.NewEntitlementRepository(), projects, tiers, logger, clock)
}

func newProjectService(t *testing.T) (services.ProjectService, *entitlement.Ledger) {
	t.Helper()
	projects := memory.NewProjectRepository()
	ledger := newTestLedger(t, projects)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProjectService(projects, ledger, logger), ledger
}

func TestCreateProjectDefaults(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, &services.CreateProjectRequest{
		UserID: "u1",
		Title:  "The Silent Orchard",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.ID == "" {
		t.Error("no id assigned")
	}
	if project.Language != "en" {
		t.Errorf("language = %q, want default en", project.Language)
	}
	if project.Metadata.Version != models.MetadataVersion {
		t.Errorf("metadata version = %d, want %d", project.Metadata.Version, models.MetadataVersion)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *services.CreateProjectRequest
	}{
		{"missing title", &services.CreateProjectRequest{UserID: "u1"}},
		{"missing user", &services.CreateProjectRequest{Title: "Untitled"}},
		{"title too long", &services.CreateProjectRequest{UserID: "u1", Title: strings.Repeat("x", 256)}},
		{"negative price", &services.CreateProjectRequest{UserID: "u1", Title: "T",
			Metadata: models.Metadata{Price: &models.Price{Amount: -1, Currency: "USD"}}}},
		{"bad currency", &services.CreateProjectRequest{UserID: "u1", Title: "T",
			Metadata: models.Metadata{Price: &models.Price{Amount: 499, Currency: "US"}}}},
		{"inverted age range", &services.CreateProjectRequest{UserID: "u1", Title: "T",
			Metadata: models.Metadata{AgeRangeMin: 12, AgeRangeMax: 8}}},
		{"unknown metadata version", &services.CreateProjectRequest{UserID: "u1", Title: "T",
			Metadata: models.Metadata{Version: 99}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProject(ctx, tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want Validation", err)
			}
		})
	}
}

func TestCreateProjectEnforcesTierLimit(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	// Free tier allows three projects.
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateProject(ctx, &services.CreateProjectRequest{
			UserID: "u1",
			Title:  "Book",
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	_, err := svc.CreateProject(ctx, &services.CreateProjectRequest{UserID: "u1", Title: "One Too Many"})
	if !errors.Is(err, domain.ErrLimitExceeded) {
		t.Fatalf("err = %v, want LimitExceeded", err)
	}

	projects, err := svc.ListProjects(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 3 {
		t.Errorf("projects = %d, the rejected create must not persist", len(projects))
	}
}

func TestUpdateProjectPartial(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, &services.CreateProjectRequest{
		UserID: "u1",
		Title:  "Working Title",
		Genre:  "mystery",
	})
	if err != nil {
		t.Fatal(err)
	}

	title := "Final Title"
	cover := "https://cdn.example.com/covers/u1.png"
	updated, err := svc.UpdateProject(ctx, project.ID, "u1", &services.UpdateProjectRequest{
		Title:    &title,
		CoverURL: &cover,
	})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Title != "Final Title" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Genre != "mystery" {
		t.Errorf("genre = %q, untouched fields must survive", updated.Genre)
	}
	if updated.CoverURL == nil || *updated.CoverURL != cover {
		t.Error("cover url not applied")
	}
}

func TestProjectOwnerScoping(t *testing.T) {
	svc, ledger := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, &services.CreateProjectRequest{UserID: "u1", Title: "Mine"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.EnsureAccount(ctx, "u2"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetProject(ctx, project.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get: err = %v, want NotFound", err)
	}
	if err := svc.DeleteProject(ctx, project.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete: err = %v, want NotFound", err)
	}
	if _, err := svc.GetProject(ctx, project.ID, "u1"); err != nil {
		t.Errorf("owner read after foreign delete attempt: %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	svc, _ := newProjectService(t)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, &services.CreateProjectRequest{UserID: "u1", Title: "Gone Soon"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteProject(ctx, project.ID, "u1"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := svc.GetProject(ctx, project.ID, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want NotFound after delete", err)
	}
}
