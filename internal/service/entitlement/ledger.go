// Package entitlement implements the credit and limit ledger that gates
// every billable operation. All balance mutations delegate to the
// repository's atomic conditional updates; this layer adds tier
// policy, period rollover and account provisioning.
package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
	"folio/internal/domain/services"
	"folio/internal/tier"
)

// PeriodLength is the billing period for export counters.
const PeriodLength = 30 * 24 * time.Hour

// ProjectCounter reports how many projects a user owns. Satisfied by
// the project repository.
type ProjectCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Ledger implements services.EntitlementLedger.
type Ledger struct {
	accounts repositories.EntitlementRepository
	projects ProjectCounter
	tiers    *tier.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewLedger creates the ledger. The clock is injected so period
// rollover is testable.
func NewLedger(
	accounts repositories.EntitlementRepository,
	projects ProjectCounter,
	tiers *tier.Registry,
	logger *slog.Logger,
	now func() time.Time,
) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		accounts: accounts,
		projects: projects,
		tiers:    tiers,
		logger:   logger,
		now:      now,
	}
}

var _ services.EntitlementLedger = (*Ledger)(nil)

// EnsureAccount returns the user's account, provisioning a free-tier
// account with the free credit allotment on first touch. A concurrent
// first touch loses the insert race and reads the winner's row.
func (l *Ledger) EnsureAccount(ctx context.Context, userID string) (*models.EntitlementAccount, error) {
	account, err := l.accounts.Get(ctx, userID)
	if err == nil {
		return l.withProjectCount(ctx, account)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	freeLimits := l.tiers.Limits(models.TierFree)
	account = &models.EntitlementAccount{
		UserID:          userID,
		Tier:            models.TierFree,
		AICredits:       freeLimits.CreditsPerPeriod,
		LifetimeCredits: freeLimits.CreditsPerPeriod,
		PeriodStart:     l.now(),
	}

	if err := l.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			account, err = l.accounts.Get(ctx, userID)
			if err != nil {
				return nil, err
			}
			return l.withProjectCount(ctx, account)
		}
		return nil, err
	}

	l.logger.Info("entitlement account provisioned",
		"user_id", userID,
		"tier", account.Tier,
		"credits", account.AICredits)

	return l.withProjectCount(ctx, account)
}

func (l *Ledger) Account(ctx context.Context, userID string) (*models.EntitlementAccount, error) {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.withProjectCount(ctx, account)
}

func (l *Ledger) ConsumeCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, &domain.ValidationError{Message: "credit amount must be positive"}
	}
	balance, err := l.accounts.ConsumeCredits(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	l.logger.Debug("credits consumed", "user_id", userID, "amount", amount, "balance", balance)
	return balance, nil
}

func (l *Ledger) RefundCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, &domain.ValidationError{Message: "credit amount must be positive"}
	}
	balance, err := l.accounts.RefundCredits(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	l.logger.Info("credits refunded", "user_id", userID, "amount", amount, "balance", balance)
	return balance, nil
}

func (l *Ledger) GrantCredits(ctx context.Context, userID string, amount int64) (*models.EntitlementAccount, error) {
	if amount <= 0 {
		return nil, &domain.ValidationError{Message: "credit amount must be positive"}
	}
	account, err := l.accounts.GrantCredits(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	l.logger.Info("credits granted", "user_id", userID, "amount", amount, "balance", account.AICredits)
	return l.withProjectCount(ctx, account)
}

func (l *Ledger) CheckProjectLimit(ctx context.Context, userID string) error {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	limits := l.tiers.Limits(account.Tier)
	if limits.MaxProjects == tier.Unlimited {
		return nil
	}

	count, err := l.projects.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count >= limits.MaxProjects {
		return &domain.LimitExceededError{
			Message: "project limit reached for tier " + string(account.Tier),
			Limit:   limits.MaxProjects,
		}
	}
	return nil
}

func (l *Ledger) CheckChapterLimit(ctx context.Context, userID string, chapterCount int) error {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	limits := l.tiers.Limits(account.Tier)
	if limits.MaxChaptersPerProject == tier.Unlimited {
		return nil
	}
	if chapterCount >= limits.MaxChaptersPerProject {
		return &domain.LimitExceededError{
			Message: "chapter limit reached for tier " + string(account.Tier),
			Limit:   limits.MaxChaptersPerProject,
		}
	}
	return nil
}

func (l *Ledger) CheckExportLimit(ctx context.Context, userID string) error {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	account, err = l.rolloverIfDue(ctx, account)
	if err != nil {
		return err
	}

	limits := l.tiers.Limits(account.Tier)
	if limits.MaxExportsPerPeriod == tier.Unlimited {
		return nil
	}
	if account.ExportsThisPeriod >= limits.MaxExportsPerPeriod {
		return &domain.LimitExceededError{
			Message: "export limit reached for this period",
			Limit:   limits.MaxExportsPerPeriod,
		}
	}
	return nil
}

func (l *Ledger) CheckExportFormat(ctx context.Context, userID string, format models.ExportFormat) error {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	limits := l.tiers.Limits(account.Tier)
	if !limits.AllowsFormat(format) {
		return &domain.FormatNotAllowedError{Format: string(format), Tier: string(account.Tier)}
	}
	return nil
}

func (l *Ledger) RecordExport(ctx context.Context, userID string) error {
	return l.accounts.IncrementExports(ctx, userID)
}

// UpgradeTier switches tiers and tops credits up to the new tier's
// period allotment. A balance already above the allotment is kept.
func (l *Ledger) UpgradeTier(ctx context.Context, userID string, newTier models.TierName) (*models.EntitlementAccount, error) {
	if !newTier.Valid() {
		return nil, &domain.ValidationError{Message: "unknown tier: " + string(newTier)}
	}

	limits := l.tiers.Limits(newTier)
	account, err := l.accounts.SetTier(ctx, userID, newTier, limits.CreditsPerPeriod)
	if err != nil {
		return nil, err
	}

	l.logger.Info("tier changed",
		"user_id", userID,
		"tier", newTier,
		"credits", account.AICredits)

	return l.withProjectCount(ctx, account)
}

func (l *Ledger) TierLimits(ctx context.Context, userID string) (tier.Limits, error) {
	account, err := l.accounts.Get(ctx, userID)
	if err != nil {
		return tier.Limits{}, err
	}
	return l.tiers.Limits(account.Tier), nil
}

// rolloverIfDue starts a fresh export period when the current one has
// lapsed. Lazy: rollover happens on the first check after expiry.
func (l *Ledger) rolloverIfDue(ctx context.Context, account *models.EntitlementAccount) (*models.EntitlementAccount, error) {
	now := l.now()
	if now.Sub(account.PeriodStart) < PeriodLength {
		return account, nil
	}

	if err := l.accounts.ResetPeriod(ctx, account.UserID, now); err != nil {
		return nil, err
	}
	account.ExportsThisPeriod = 0
	account.PeriodStart = now

	l.logger.Info("export period rolled over", "user_id", account.UserID)
	return account, nil
}

func (l *Ledger) withProjectCount(ctx context.Context, account *models.EntitlementAccount) (*models.EntitlementAccount, error) {
	count, err := l.projects.CountByUser(ctx, account.UserID)
	if err != nil {
		return nil, err
	}
	account.ProjectCount = count
	return account, nil
}
