package repositories

import (
	"context"
	"time"

	"folio/internal/domain/models"
)

// EntitlementRepository persists per-account ledger state. The
// conditional mutations are the atomicity boundary: implementations
// must make each a single conditional update (SQL "UPDATE ... WHERE
// ai_credits >= $n" or an account-keyed lock), never a read followed by
// a separate write.
type EntitlementRepository interface {
	Create(ctx context.Context, account *models.EntitlementAccount) error
	Get(ctx context.Context, userID string) (*models.EntitlementAccount, error)

	// ConsumeCredits atomically decrements ai_credits by amount iff the
	// balance covers it, returning the new balance. On an insufficient
	// balance it returns domain.InsufficientCreditsError and changes
	// nothing.
	ConsumeCredits(ctx context.Context, userID string, amount int64) (int64, error)

	// GrantCredits increments ai_credits and lifetime_credits together.
	GrantCredits(ctx context.Context, userID string, amount int64) (*models.EntitlementAccount, error)

	// RefundCredits restores previously consumed ai_credits. It does
	// not touch lifetime_credits: a refund is not a new grant.
	RefundCredits(ctx context.Context, userID string, amount int64) (int64, error)

	// SetTier updates the tier and raises ai_credits to at least
	// minCredits without ever lowering an already-higher balance.
	SetTier(ctx context.Context, userID string, tier models.TierName, minCredits int64) (*models.EntitlementAccount, error)

	// IncrementExports bumps the period export counter.
	IncrementExports(ctx context.Context, userID string) error

	// ResetPeriod zeroes the export counter and stamps a new period.
	ResetPeriod(ctx context.Context, userID string, periodStart time.Time) error
}
