package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"folio/internal/domain"
	"folio/internal/domain/models"
)

// JWKSVerifier validates tokens against the identity provider's JWKS
// endpoint. Keys are cached and refreshed by keyfunc based on HTTP
// cache headers.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from the
// given JWKS endpoint.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (TokenVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyToken validates a JWT and extracts its claims. Any failure maps
// to the unauthenticated sentinel; callers never learn why a token was
// rejected.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthenticated
	}
	if !token.Valid {
		return nil, domain.ErrUnauthenticated
	}

	// Only asymmetric algorithms; an HS256 token signed with the public
	// key must not verify.
	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	// Anonymous sessions can read public pages but never the API.
	if claims.Role != "authenticated" {
		v.logger.Debug("token has non-authenticated role", "role", claims.Role)
		return nil, domain.ErrUnauthenticated
	}

	return claims, nil
}

// Close releases verifier resources. keyfunc v3 manages its own
// lifecycle, so this only exists for shutdown symmetry.
func (v *JWKSVerifier) Close() error {
	return nil
}
