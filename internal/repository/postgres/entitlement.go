package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// PostgresEntitlementRepository implements the EntitlementRepository
// interface. Every conditional mutation is a single UPDATE whose WHERE
// clause carries the precondition, so the check and the write are one
// atomic statement. There is no read-then-write anywhere in this file.
type PostgresEntitlementRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewEntitlementRepository creates a new entitlement repository
func NewEntitlementRepository(config *RepositoryConfig) repositories.EntitlementRepository {
	return &PostgresEntitlementRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresEntitlementRepository) Create(ctx context.Context, account *models.EntitlementAccount) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, tier, ai_credits, lifetime_credits, exports_this_period, period_start)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING updated_at
	`, r.tables.Entitlements)

	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		account.UserID,
		account.Tier,
		account.AICredits,
		account.LifetimeCredits,
		account.ExportsThisPeriod,
		account.PeriodStart,
	).Scan(&account.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "entitlement account already exists",
				ResourceType: "entitlement_account",
				ResourceID:   account.UserID,
			}
		}
		return fmt.Errorf("create entitlement account: %w", err)
	}

	return nil
}

func (r *PostgresEntitlementRepository) Get(ctx context.Context, userID string) (*models.EntitlementAccount, error) {
	query := fmt.Sprintf(`
		SELECT user_id, tier, ai_credits, lifetime_credits, exports_this_period, period_start, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.Entitlements)

	var account models.EntitlementAccount
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Tier,
		&account.AICredits,
		&account.LifetimeCredits,
		&account.ExportsThisPeriod,
		&account.PeriodStart,
		&account.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("entitlement account %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get entitlement account: %w", err)
	}

	return &account, nil
}

// ConsumeCredits decrements ai_credits iff the balance covers the
// amount. The balance predicate lives in the WHERE clause: a losing
// concurrent caller simply matches no row and nothing changes.
func (r *PostgresEntitlementRepository) ConsumeCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET ai_credits = ai_credits - $2, updated_at = now()
		WHERE user_id = $1 AND ai_credits >= $2
		RETURNING ai_credits
	`, r.tables.Entitlements)

	q := GetExecutor(ctx, r.pool)

	var balance int64
	err := q.QueryRow(ctx, query, userID, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !isPgNoRowsError(err) {
		return 0, fmt.Errorf("consume credits: %w", err)
	}

	// No row matched: either the account is missing or the balance is
	// short. Distinguish for the caller.
	account, getErr := r.Get(ctx, userID)
	if getErr != nil {
		return 0, getErr
	}
	return 0, &domain.InsufficientCreditsError{Required: amount, Balance: account.AICredits}
}

// GrantCredits raises ai_credits and lifetime_credits together.
func (r *PostgresEntitlementRepository) GrantCredits(ctx context.Context, userID string, amount int64) (*models.EntitlementAccount, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET ai_credits = ai_credits + $2, lifetime_credits = lifetime_credits + $2, updated_at = now()
		WHERE user_id = $1
		RETURNING user_id, tier, ai_credits, lifetime_credits, exports_this_period, period_start, updated_at
	`, r.tables.Entitlements)

	return r.scanAccountRow(ctx, query, userID, amount)
}

// RefundCredits restores ai_credits without touching lifetime_credits.
func (r *PostgresEntitlementRepository) RefundCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET ai_credits = ai_credits + $2, updated_at = now()
		WHERE user_id = $1
		RETURNING ai_credits
	`, r.tables.Entitlements)

	var balance int64
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, userID, amount).Scan(&balance)
	if err != nil {
		if isPgNoRowsError(err) {
			return 0, fmt.Errorf("entitlement account %s: %w", userID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("refund credits: %w", err)
	}
	return balance, nil
}

// SetTier switches the tier and tops ai_credits up to at least
// minCredits. GREATEST keeps an already-higher balance; the lifetime
// counter grows by exactly the top-up delta. Column reads in an UPDATE
// see pre-statement values, so both expressions use the old balance.
func (r *PostgresEntitlementRepository) SetTier(ctx context.Context, userID string, tier models.TierName, minCredits int64) (*models.EntitlementAccount, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET tier = $2,
		    lifetime_credits = lifetime_credits + GREATEST($3 - ai_credits, 0),
		    ai_credits = GREATEST(ai_credits, $3),
		    updated_at = now()
		WHERE user_id = $1
		RETURNING user_id, tier, ai_credits, lifetime_credits, exports_this_period, period_start, updated_at
	`, r.tables.Entitlements)

	return r.scanAccountRow(ctx, query, userID, tier, minCredits)
}

// IncrementExports bumps the period export counter.
func (r *PostgresEntitlementRepository) IncrementExports(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET exports_this_period = exports_this_period + 1, updated_at = now()
		WHERE user_id = $1
	`, r.tables.Entitlements)

	q := GetExecutor(ctx, r.pool)
	tag, err := q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("increment exports: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entitlement account %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// ResetPeriod zeroes the export counter and stamps a new period start.
func (r *PostgresEntitlementRepository) ResetPeriod(ctx context.Context, userID string, periodStart time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET exports_this_period = 0, period_start = $2, updated_at = now()
		WHERE user_id = $1
	`, r.tables.Entitlements)

	q := GetExecutor(ctx, r.pool)
	tag, err := q.Exec(ctx, query, userID, periodStart)
	if err != nil {
		return fmt.Errorf("reset period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entitlement account %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresEntitlementRepository) scanAccountRow(ctx context.Context, query string, args ...any) (*models.EntitlementAccount, error) {
	var account models.EntitlementAccount
	q := GetExecutor(ctx, r.pool)
	err := q.QueryRow(ctx, query, args...).Scan(
		&account.UserID,
		&account.Tier,
		&account.AICredits,
		&account.LifetimeCredits,
		&account.ExportsThisPeriod,
		&account.PeriodStart,
		&account.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("entitlement account: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update entitlement account: %w", err)
	}
	return &account, nil
}
