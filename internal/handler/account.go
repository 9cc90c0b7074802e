package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/domain/models"
	"folio/internal/domain/services"
	"folio/internal/httputil"
)

// AccountHandler exposes the entitlement account: balance, tier and
// usage counters.
type AccountHandler struct {
	ledger services.EntitlementLedger
	logger *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledger services.EntitlementLedger, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{ledger: ledger, logger: logger}
}

// GetAccount returns the caller's entitlement account, provisioning a
// free-tier account on first touch
// GET /api/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.EnsureAccount(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, account)
}

type purchaseCreditsRequest struct {
	Amount int64 `json:"amount"`
}

// PurchaseCredits adds purchased credits to the account. Payment
// capture happens upstream; this endpoint records the grant.
// POST /api/account/credits
func (h *AccountHandler) PurchaseCredits(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req purchaseCreditsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.ledger.EnsureAccount(r.Context(), userID); err != nil {
		handleError(w, err)
		return
	}
	account, err := h.ledger.GrantCredits(r.Context(), userID, req.Amount)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, account)
}

type changeTierRequest struct {
	Tier models.TierName `json:"tier"`
}

// ChangeTier switches the account's tier and applies the credit top-up
// POST /api/account/tier
func (h *AccountHandler) ChangeTier(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req changeTierRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.ledger.EnsureAccount(r.Context(), userID); err != nil {
		handleError(w, err)
		return
	}
	account, err := h.ledger.UpgradeTier(r.Context(), userID, req.Tier)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, account)
}
