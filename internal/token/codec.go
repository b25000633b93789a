// Package token signs and verifies the stateless bearer tokens that back
// Reserva sessions.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid covers every verification failure: malformed encoding,
// signature mismatch, and expiry. Callers cannot distinguish them.
var ErrTokenInvalid = errors.New("token: invalid")

// Claims is the verified payload of a session token.
type Claims struct {
	Subject   int64
	ExpiresAt time.Time
}

// Codec issues and verifies HS256 session tokens. The signing secret is
// loaded once at startup and never rotated while the process runs; rotating
// it invalidates every outstanding token, which is the accepted trade-off
// for keeping sessions fully stateless.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec constructs a Codec. The secret must be non-empty.
func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: secret required")
	}
	return &Codec{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for the given subject. The token expires at
// issuedAt+ttl; a zero ttl produces a token that is already expired.
func (c *Codec) Issue(subject int64, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   strconv.FormatInt(subject, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token at the given instant. Any failure is
// reported as ErrTokenInvalid; expiry is checked in addition to the
// signature, with now >= expiresAt treated as expired.
func (c *Codec) Verify(raw string, now time.Time) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ExpiresAt == nil {
		return Claims{}, ErrTokenInvalid
	}
	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrTokenInvalid
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return Claims{}, ErrTokenInvalid
	}
	return Claims{Subject: subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
