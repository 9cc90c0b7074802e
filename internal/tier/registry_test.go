package tier

import (
	"testing"

	"folio/internal/domain/models"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	free := r.Limits(models.TierFree)
	if !free.Watermark {
		t.Error("free tier should be watermarked")
	}
	if free.AllowsFormat(models.FormatPDF) {
		t.Error("free tier should not allow pdf")
	}
	if !free.AllowsFormat(models.FormatHTML) || !free.AllowsFormat(models.FormatEPUB) {
		t.Error("free tier should allow html and epub")
	}

	pro := r.Limits(models.TierPro)
	if pro.Watermark {
		t.Error("pro tier should not be watermarked")
	}
	if pro.MaxProjects != Unlimited {
		t.Errorf("pro MaxProjects = %d, want unlimited", pro.MaxProjects)
	}
	if !pro.AllowsFormat(models.FormatMOBI) {
		t.Error("pro tier should allow mobi")
	}
}

func TestLimitsUnknownTierFallsBackToFree(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	got := r.Limits(models.TierName("enterprise"))
	free := r.Limits(models.TierFree)
	if got.MaxProjects != free.MaxProjects || got.Watermark != free.Watermark {
		t.Error("unknown tier should fall back to free limits")
	}
}
