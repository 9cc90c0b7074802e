package models

import "time"

// TierName is a subscription level.
type TierName string

const (
	TierFree TierName = "free"
	TierPlus TierName = "plus"
	TierPro  TierName = "pro"
)

// Valid reports whether t is a known tier.
func (t TierName) Valid() bool {
	switch t {
	case TierFree, TierPlus, TierPro:
		return true
	}
	return false
}

// EntitlementAccount is the per-user ledger state. AICredits is never
// negative; LifetimeCredits never decreases. Mutations go through the
// entitlement ledger's atomic operations only.
type EntitlementAccount struct {
	UserID           string    `json:"user_id"`
	Tier             TierName  `json:"tier"`
	AICredits        int64     `json:"ai_credits"`
	LifetimeCredits  int64     `json:"lifetime_credits"`
	ProjectCount     int       `json:"project_count"`
	ExportsThisPeriod int      `json:"exports_this_period"`
	PeriodStart      time.Time `json:"period_start"`
	UpdatedAt        time.Time `json:"updated_at"`
}
