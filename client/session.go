// Package client mirrors the server's session and permission state inside
// a client process so navigation can be gated without a network round trip.
// Every check here is a convenience: the server guard remains authoritative,
// and any rejection from it re-invalidates the local mirror.
package client

import (
	"strings"
	"sync"
	"time"
)

// User is the client's copy of the authenticated account.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	BranchID *int64 `json:"branch_id,omitempty"`
	Role     Role   `json:"role"`
}

// Role is the client's copy of the account's role.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// Session is the triple the store holds. It is always replaced whole.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// sessionState is the immutable snapshot behind the store. Replacing the
// pointer atomically under the mutex guarantees no observer ever sees an
// old token with new permissions or vice versa.
type sessionState struct {
	token     string
	expiresAt time.Time
	user      User
	perms     map[string]struct{}
}

// SessionStore holds the process-wide session mirror.
type SessionStore struct {
	mu        sync.RWMutex
	state     *sessionState
	epoch     uint64
	resolving bool
	now       func() time.Time

	watchMu  sync.Mutex
	watchers []chan struct{}
}

// NewSessionStore constructs an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func newState(sess Session) *sessionState {
	perms := make(map[string]struct{}, len(sess.User.Role.Permissions))
	for _, p := range sess.User.Role.Permissions {
		perms[strings.ToLower(p)] = struct{}{}
	}
	return &sessionState{
		token:     sess.Token,
		expiresAt: sess.ExpiresAt,
		user:      sess.User,
		perms:     perms,
	}
}

// Set replaces the whole session after a successful login.
func (s *SessionStore) Set(sess Session) {
	s.mu.Lock()
	s.state = newState(sess)
	s.resolving = false
	s.epoch++
	s.mu.Unlock()
	s.notify()
}

// Clear drops the session. Used for logout, the server's session-invalid
// signal, and local expiry detection. Any in-flight resolution is
// implicitly abandoned: its epoch no longer matches.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	s.state = nil
	s.resolving = false
	s.epoch++
	s.mu.Unlock()
	s.notify()
}

// Token returns the stored bearer token, if a live session exists.
func (s *SessionStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return "", false
	}
	return s.state.token, true
}

// Authenticated reports whether a session exists whose token has not
// locally expired. An expired session is cleared on detection.
func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state == nil {
		return false
	}
	if !s.now().Before(state.expiresAt) {
		s.Clear()
		return false
	}
	return true
}

// ExpiresAt returns the stored token's expiry, if a session exists.
func (s *SessionStore) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return time.Time{}, false
	}
	return s.state.expiresAt, true
}

// User returns the stored user, if any.
func (s *SessionStore) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return User{}, false
	}
	return s.state.user, true
}

// HasPermission is the synchronous membership check against the cached
// permission set. It never consults the server; staleness is resolved by
// the server guard rejecting the eventual request.
func (s *SessionStore) HasPermission(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return false
	}
	_, ok := s.state.perms[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// BeginResolution marks a refresh attempt and returns its epoch. A later
// CompleteResolution only applies when the epoch still matches, so an
// abandoned or slow attempt can never overwrite state set by a newer one.
func (s *SessionStore) BeginResolution() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.resolving = true
	return s.epoch
}

// CompleteResolution installs the resolved session if the attempt is still
// current. It reports whether the result was applied.
func (s *SessionStore) CompleteResolution(epoch uint64, sess Session) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	s.state = newState(sess)
	s.resolving = false
	s.mu.Unlock()
	s.notify()
	return true
}

// AbandonResolution ends a pending attempt without touching state.
func (s *SessionStore) AbandonResolution(epoch uint64) {
	s.mu.Lock()
	if epoch == s.epoch {
		s.resolving = false
	}
	s.mu.Unlock()
	s.notify()
}

// Resolving reports whether a refresh attempt is in flight.
func (s *SessionStore) Resolving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolving
}

// Watch returns a channel that receives a tick after every state change,
// so route guards can re-evaluate. Notifications are coalesced.
func (s *SessionStore) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.watchMu.Lock()
	s.watchers = append(s.watchers, ch)
	s.watchMu.Unlock()
	return ch
}

func (s *SessionStore) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
