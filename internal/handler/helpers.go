package handler

import (
	"errors"
	"net/http"

	"folio/internal/domain"
	"folio/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Typed domain
// errors carry their own status code; anything else is a 500 with the
// detail withheld.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		respondDomainError(w, httpErr)
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondDomainError adds machine-readable extras for errors a client
// is expected to act on, like showing the exact credit shortfall.
func respondDomainError(w http.ResponseWriter, err domain.HTTPError) {
	var creditsErr *domain.InsufficientCreditsError
	if errors.As(err, &creditsErr) {
		httputil.RespondErrorWithExtras(w, err.StatusCode(), err.Error(), map[string]interface{}{
			"required": creditsErr.Required,
			"balance":  creditsErr.Balance,
		})
		return
	}

	var limitErr *domain.LimitExceededError
	if errors.As(err, &limitErr) {
		httputil.RespondErrorWithExtras(w, err.StatusCode(), err.Error(), map[string]interface{}{
			"limit": limitErr.Limit,
		})
		return
	}

	httputil.RespondError(w, err.StatusCode(), err.Error())
}
