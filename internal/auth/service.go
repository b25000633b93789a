// Package auth validates credentials and issues session tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/reserva-app/reserva/internal/directory"
	"github.com/reserva-app/reserva/internal/token"
)

// ErrInvalidCredentials indicates login failure. Unknown accounts, wrong
// passwords, and disabled accounts all surface as this single error so the
// response cannot be used to enumerate users.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Session is the result of a successful login.
type Session struct {
	User      *directory.User
	Token     string
	ExpiresAt time.Time
}

// Service wraps authentication business rules.
type Service struct {
	store directory.Store
	codec *token.Codec
	ttl   time.Duration
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store directory.Store, codec *token.Codec, ttl time.Duration) *Service {
	return &Service{store: store, codec: codec, ttl: ttl, now: time.Now}
}

// Login validates email/password and mints a session token. It fails closed:
// every credential mismatch returns ErrInvalidCredentials. No server-side
// session state is written; the token alone proves the authentication.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		// Burn a comparison so unknown accounts take the same path
		// as wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	issuedAt := s.now().UTC()
	signed, err := s.codec.Issue(user.ID, issuedAt, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: signed, ExpiresAt: issuedAt.Add(s.ttl)}, nil
}
