package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Errors surfaced by the API client.
var (
	// ErrInvalidCredentials mirrors the server's generic login failure.
	ErrInvalidCredentials = errors.New("client: invalid credentials")
	// ErrSessionInvalidated is returned when a response carries the
	// session-invalid signal; the store has already been cleared.
	ErrSessionInvalidated = errors.New("client: session invalidated")
	// ErrNotAuthenticated is returned when a call needs a session and the
	// store has none.
	ErrNotAuthenticated = errors.New("client: not authenticated")
)

// API talks to the Reserva server on behalf of the client process and keeps
// the session store in sync with what the server decides.
type API struct {
	base  string
	http  *http.Client
	store *SessionStore
}

// NewAPI constructs an API client around a session store.
func NewAPI(baseURL string, store *SessionStore) *API {
	return &API{
		base:  strings.TrimRight(baseURL, "/"),
		http:  &http.Client{Timeout: 15 * time.Second},
		store: store,
	}
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type sessionResult struct {
	User User `json:"user"`
}

// Login authenticates and populates the session store on success.
func (a *API) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(loginPayload{Email: email, Password: password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(res)
	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("client: login: unexpected status %d", res.StatusCode)
	}
	var result loginResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return err
	}
	a.store.Set(Session{Token: result.Token, ExpiresAt: result.ExpiresAt, User: result.User})
	return nil
}

// Logout clears the local session. The token itself cannot be revoked; it
// simply stops being presented and ages out.
func (a *API) Logout() {
	a.store.Clear()
}

// Refresh re-resolves the session against the server. The attempt is
// epoch-tagged: if the store changed while the request was in flight, the
// stale result is discarded.
func (a *API) Refresh(ctx context.Context) error {
	tok, ok := a.store.Token()
	if !ok {
		return ErrNotAuthenticated
	}
	expiresAt, _ := a.store.ExpiresAt()
	epoch := a.store.BeginResolution()
	res, err := a.do(ctx, http.MethodGet, "/api/auth/session", nil, tok)
	if err != nil {
		a.store.AbandonResolution(epoch)
		return err
	}
	defer drain(res)
	if res.StatusCode == http.StatusForbidden {
		a.store.Clear()
		return ErrSessionInvalidated
	}
	if res.StatusCode != http.StatusOK {
		a.store.AbandonResolution(epoch)
		return fmt.Errorf("client: refresh: unexpected status %d", res.StatusCode)
	}
	var result sessionResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		a.store.AbandonResolution(epoch)
		return err
	}
	a.store.CompleteResolution(epoch, Session{Token: tok, ExpiresAt: expiresAt, User: result.User})
	return nil
}

// Do performs an authorized request. Any 403 response is the server's
// session-invalid signal: the store is cleared immediately and
// ErrSessionInvalidated returned, regardless of which operation produced it.
func (a *API) Do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	tok, ok := a.store.Token()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	res, err := a.do(ctx, method, path, body, tok)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusForbidden {
		drain(res)
		a.store.Clear()
		return nil, ErrSessionInvalidated
	}
	return res, nil
}

func (a *API) do(ctx context.Context, method, path string, body io.Reader, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return a.http.Do(req)
}

func drain(res *http.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
