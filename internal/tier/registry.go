// Package tier holds the static subscription tier limits table. The
// table is embedded YAML, parsed once at startup; callers get value
// copies and cannot mutate the registry.
package tier

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"folio/internal/domain/models"
)

//go:embed config/tiers.yaml
var tiersYAML []byte

// Unlimited is the sentinel meaning a limit is not enforced.
const Unlimited = -1

// Limits bounds what one tier may do.
type Limits struct {
	MaxProjects           int                   `yaml:"max_projects"`
	MaxExportsPerPeriod   int                   `yaml:"max_exports_per_period"`
	MaxChaptersPerProject int                   `yaml:"max_chapters_per_project"`
	CreditsPerPeriod      int64                 `yaml:"credits_per_period"`
	AllowedFormats        []models.ExportFormat `yaml:"allowed_formats"`
	Watermark             bool                  `yaml:"watermark"`
}

// AllowsFormat reports whether the tier permits the given export format.
func (l Limits) AllowsFormat(format models.ExportFormat) bool {
	for _, f := range l.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

type tierFile struct {
	Tiers map[models.TierName]Limits `yaml:"tiers"`
}

// Registry is the parsed, immutable tier table.
type Registry struct {
	limits map[models.TierName]Limits
}

// NewRegistry parses the embedded tier table. Fails fast on a malformed
// table or a tier with no limits — a missing tier at runtime would
// otherwise silently grant nothing.
func NewRegistry() (*Registry, error) {
	var f tierFile
	if err := yaml.Unmarshal(tiersYAML, &f); err != nil {
		return nil, fmt.Errorf("parse tier table: %w", err)
	}

	for _, name := range []models.TierName{models.TierFree, models.TierPlus, models.TierPro} {
		if _, ok := f.Tiers[name]; !ok {
			return nil, fmt.Errorf("tier table missing %q", name)
		}
	}

	return &Registry{limits: f.Tiers}, nil
}

// Limits returns the limits for a tier. Unknown tiers fall back to the
// free tier's limits, the most restrictive set.
func (r *Registry) Limits(name models.TierName) Limits {
	if l, ok := r.limits[name]; ok {
		return l
	}
	return r.limits[models.TierFree]
}
