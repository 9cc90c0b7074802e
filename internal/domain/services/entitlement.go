package services

import (
	"context"

	"folio/internal/domain/models"
	"folio/internal/tier"
)

// EntitlementLedger is the account-scoped gate for everything billable.
// Every check is an atomic precondition: on failure, nothing anywhere
// has changed.
type EntitlementLedger interface {
	// EnsureAccount fetches the account, creating a free-tier account
	// with the free period credit allotment on first touch.
	EnsureAccount(ctx context.Context, userID string) (*models.EntitlementAccount, error)

	Account(ctx context.Context, userID string) (*models.EntitlementAccount, error)

	// ConsumeCredits atomically spends credits, returning the new
	// balance. Fails with InsufficientCredits and no mutation when the
	// balance cannot cover the amount.
	ConsumeCredits(ctx context.Context, userID string, amount int64) (int64, error)

	// RefundCredits restores spent credits after a confirmed
	// provider-side failure.
	RefundCredits(ctx context.Context, userID string, amount int64) (int64, error)

	// GrantCredits adds purchased credits; lifetime credits grow by the
	// same amount and never shrink.
	GrantCredits(ctx context.Context, userID string, amount int64) (*models.EntitlementAccount, error)

	// CheckProjectLimit fails with LimitExceeded when the account is at
	// its tier's project cap. The unlimited sentinel bypasses.
	CheckProjectLimit(ctx context.Context, userID string) error

	// CheckChapterLimit fails with LimitExceeded when the project is at
	// the tier's chapter cap.
	CheckChapterLimit(ctx context.Context, userID string, chapterCount int) error

	// CheckExportLimit fails with LimitExceeded when the period export
	// cap is reached.
	CheckExportLimit(ctx context.Context, userID string) error

	// CheckExportFormat fails with FormatNotAllowed when the tier does
	// not include the format.
	CheckExportFormat(ctx context.Context, userID string, format models.ExportFormat) error

	// RecordExport bumps the period export counter after a completed
	// export.
	RecordExport(ctx context.Context, userID string) error

	// UpgradeTier switches the tier and tops ai credits up to at least
	// the new tier's period allotment, never reducing a higher balance.
	UpgradeTier(ctx context.Context, userID string, newTier models.TierName) (*models.EntitlementAccount, error)

	// TierLimits is a pure read of the static limits table for the
	// account's current tier.
	TierLimits(ctx context.Context, userID string) (tier.Limits, error)
}
