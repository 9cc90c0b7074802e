// Package memory provides in-memory repository implementations backed
// by maps and a mutex. Used by tests and by dev mode when no database
// is configured. The entitlement implementation honors the same
// atomicity contract as the SQL one: every conditional mutation happens
// under one lock acquisition, check and write together.
package memory

import (
	"context"
	"sync"
	"time"

	"folio/internal/domain"
	"folio/internal/domain/models"
	"folio/internal/domain/repositories"
)

// EntitlementRepository is a map-backed entitlement store.
type EntitlementRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.EntitlementAccount
}

// NewEntitlementRepository creates an empty in-memory entitlement store.
func NewEntitlementRepository() *EntitlementRepository {
	return &EntitlementRepository{accounts: make(map[string]*models.EntitlementAccount)}
}

var _ repositories.EntitlementRepository = (*EntitlementRepository)(nil)

func (r *EntitlementRepository) Create(ctx context.Context, account *models.EntitlementAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.UserID]; ok {
		return &domain.ConflictError{
			Message:      "entitlement account already exists",
			ResourceType: "entitlement_account",
			ResourceID:   account.UserID,
		}
	}

	cp := *account
	r.accounts[account.UserID] = &cp
	return nil
}

func (r *EntitlementRepository) Get(ctx context.Context, userID string) (*models.EntitlementAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "entitlement account not found"}
	}
	cp := *acct
	return &cp, nil
}

// ConsumeCredits performs the conditional decrement under the lock:
// the balance check and the write are inseparable, so two concurrent
// calls can never both spend the same credits.
func (r *EntitlementRepository) ConsumeCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return 0, &domain.NotFoundError{Message: "entitlement account not found"}
	}
	if acct.AICredits < amount {
		return 0, &domain.InsufficientCreditsError{Required: amount, Balance: acct.AICredits}
	}

	acct.AICredits -= amount
	acct.UpdatedAt = time.Now()
	return acct.AICredits, nil
}

func (r *EntitlementRepository) GrantCredits(ctx context.Context, userID string, amount int64) (*models.EntitlementAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "entitlement account not found"}
	}

	acct.AICredits += amount
	acct.LifetimeCredits += amount
	acct.UpdatedAt = time.Now()
	cp := *acct
	return &cp, nil
}

func (r *EntitlementRepository) RefundCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return 0, &domain.NotFoundError{Message: "entitlement account not found"}
	}

	acct.AICredits += amount
	acct.UpdatedAt = time.Now()
	return acct.AICredits, nil
}

func (r *EntitlementRepository) SetTier(ctx context.Context, userID string, tierName models.TierName, minCredits int64) (*models.EntitlementAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "entitlement account not found"}
	}

	acct.Tier = tierName
	if acct.AICredits < minCredits {
		// Top up to the new allotment; lifetime grows by the delta.
		acct.LifetimeCredits += minCredits - acct.AICredits
		acct.AICredits = minCredits
	}
	acct.UpdatedAt = time.Now()
	cp := *acct
	return &cp, nil
}

func (r *EntitlementRepository) IncrementExports(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return &domain.NotFoundError{Message: "entitlement account not found"}
	}
	acct.ExportsThisPeriod++
	acct.UpdatedAt = time.Now()
	return nil
}

func (r *EntitlementRepository) ResetPeriod(ctx context.Context, userID string, periodStart time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[userID]
	if !ok {
		return &domain.NotFoundError{Message: "entitlement account not found"}
	}
	acct.ExportsThisPeriod = 0
	acct.PeriodStart = periodStart
	acct.UpdatedAt = time.Now()
	return nil
}
