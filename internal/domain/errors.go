package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the handler layer free of
// per-error switch statements.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found or is not owned
	// by the caller. Ownership failures deliberately look identical to
	// missing resources.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthenticatedError indicates identity verification failure
	UnauthenticatedError struct {
		Message string
	}

	// LimitExceededError indicates a tier usage cap was hit
	// (projects, chapters, exports this period).
	LimitExceededError struct {
		Message string
		Limit   int
	}

	// FormatNotAllowedError indicates the account's tier does not
	// permit the requested export format.
	FormatNotAllowedError struct {
		Format string
		Tier   string
	}

	// InsufficientCreditsError indicates the account balance cannot
	// cover the requested spend. Balance is the untouched balance.
	InsufficientCreditsError struct {
		Required int64
		Balance  int64
	}

	// PersistenceError indicates an object-store write failure.
	// Safe to retry: assembly is pure and no artifact record exists yet.
	PersistenceError struct {
		Message string
		Err     error
	}
)

func (e *NotFoundError) Error() string        { return e.Message }
func (e *ValidationError) Error() string      { return e.Message }
func (e *UnauthenticatedError) Error() string { return e.Message }
func (e *LimitExceededError) Error() string   { return e.Message }

func (e *FormatNotAllowedError) Error() string {
	return fmt.Sprintf("format %q is not available on the %s tier", e.Format, e.Tier)
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Balance)
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int            { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int          { return http.StatusBadRequest }
func (e *UnauthenticatedError) StatusCode() int     { return http.StatusUnauthorized }
func (e *LimitExceededError) StatusCode() int       { return http.StatusForbidden }
func (e *FormatNotAllowedError) StatusCode() int    { return http.StatusForbidden }
func (e *InsufficientCreditsError) StatusCode() int { return http.StatusPaymentRequired }
func (e *PersistenceError) StatusCode() int         { return http.StatusBadGateway }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrValidation          = errors.New("validation failed")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrLimitExceeded       = errors.New("limit exceeded")
	ErrFormatNotAllowed    = errors.New("format not allowed")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPersistence         = errors.New("persistence failed")
	ErrStaleSnapshot       = errors.New("content changed since snapshot")
)

// Is hooks so typed errors match their sentinels with errors.Is.
func (e *NotFoundError) Is(target error) bool        { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool      { return target == ErrValidation }
func (e *UnauthenticatedError) Is(target error) bool { return target == ErrUnauthenticated }
func (e *LimitExceededError) Is(target error) bool   { return target == ErrLimitExceeded }
func (e *FormatNotAllowedError) Is(target error) bool {
	return target == ErrFormatNotAllowed
}
func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// StaleSnapshotError indicates a chapter's content changed between the
// caller taking a snapshot and the splice landing. The generated text
// is discarded rather than spliced at offsets that no longer line up.
type StaleSnapshotError struct {
	ChapterID string
}

func (e *StaleSnapshotError) Error() string {
	return "chapter content changed since snapshot"
}

func (e *StaleSnapshotError) StatusCode() int { return http.StatusConflict }

// Is matches both the stale-snapshot and the generic conflict sentinel.
func (e *StaleSnapshotError) Is(target error) bool {
	return target == ErrStaleSnapshot || target == ErrConflict
}

// ConflictError represents a resource conflict with details about the
// existing resource (duplicate titles, stale splice snapshots).
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
