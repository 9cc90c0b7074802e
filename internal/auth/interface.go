package auth

import "folio/internal/domain/models"

// TokenVerifier validates bearer tokens and returns their claims. The
// middleware depends on this interface so tests can swap in a static
// verifier.
type TokenVerifier interface {
	// VerifyToken validates a JWT string and returns the parsed claims.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
