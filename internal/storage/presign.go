package storage

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxUploadTTL bounds how long a presigned upload URL stays valid.
const MaxUploadTTL = 15 * time.Minute

// Presigner issues and verifies time-bounded upload URLs. The grant is
// an HMAC-signed token naming exactly one bucket/key pair; the upload
// endpoint accepts a token only for the object it names.
type Presigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewPresigner creates a presigner. The clock is injected for tests.
func NewPresigner(secret []byte, baseURL string, now func() time.Time) *Presigner {
	if now == nil {
		now = time.Now
	}
	return &Presigner{secret: secret, baseURL: baseURL, now: now}
}

type uploadClaims struct {
	jwt.RegisteredClaims
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// PresignUpload returns a URL that authorizes one upload to
// bucket/key until the TTL expires. TTLs above MaxUploadTTL are
// clamped.
func (p *Presigner) PresignUpload(bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key cannot be empty")
	}
	if ttl <= 0 || ttl > MaxUploadTTL {
		ttl = MaxUploadTTL
	}

	now := p.now()
	claims := uploadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Bucket: bucket,
		Key:    key,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign upload token: %w", err)
	}

	return fmt.Sprintf("%s/v1/uploads?token=%s", p.baseURL, url.QueryEscape(signed)), nil
}

// VerifyUploadToken validates a presigned token and returns the
// bucket/key it grants access to.
func (p *Presigner) VerifyUploadToken(token string) (bucket, key string, err error) {
	parsed, err := jwt.ParseWithClaims(token, &uploadClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return "", "", fmt.Errorf("invalid upload token: %w", err)
	}

	claims, ok := parsed.Claims.(*uploadClaims)
	if !ok || !parsed.Valid {
		return "", "", fmt.Errorf("invalid upload token")
	}
	return claims.Bucket, claims.Key, nil
}
