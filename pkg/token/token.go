// Package token mints and verifies session tokens issued after a
// successful multi-factor login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minKeyLength is the smallest signing key accepted, matching the HS256
// hash output size.
const minKeyLength = 32

// Common errors returned by the token issuer.
var (
	// ErrInvalidKey indicates the signing key is too short.
	ErrInvalidKey = errors.New("token: signing key must be at least 32 bytes")
	// ErrInvalidToken indicates a token failed signature or claim checks.
	ErrInvalidToken = errors.New("token: invalid session token")
	// ErrNilIssuer indicates a nil issuer was used.
	ErrNilIssuer = errors.New("token: issuer is nil")
)

// Config holds token issuer configuration.
type Config struct {
	// Key is the HMAC signing key (required, 32 bytes minimum).
	Key []byte
	// Issuer is the iss claim stamped on every token (required).
	Issuer string
	// TTL is the token lifetime.
	// Default: 15 minutes
	TTL time.Duration
	// Now supplies the clock for issuance and expiry checks.
	// Default: time.Now
	Now func() time.Time
}

// Issuer mints HS256-signed session tokens. It is safe for concurrent use.
type Issuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a token issuer. The key length is checked here so a
// weak key fails at construction time.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Key) < minKeyLength {
		return nil, ErrInvalidKey
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrInvalidToken)
	}
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Issuer{
		key:    cfg.Key,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Issue mints a session token for the authenticated subject.
func (i *Issuer) Issue(subject string) (string, error) {
	if i == nil {
		return "", ErrNilIssuer
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("token: failed to sign: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature, issuer and expiry, returning the
// subject it was issued for.
func (i *Issuer) Verify(tokenString string) (string, error) {
	if i == nil {
		return "", ErrNilIssuer
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}
