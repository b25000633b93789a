package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reserva-app/reserva/client"
)

func sessionPayload(token string) map[string]any {
	return map[string]any{
		"token":      token,
		"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		"user": map[string]any{
			"id":    int64(7),
			"email": "staff@reserva.local",
			"name":  "Staff",
			"role": map[string]any{
				"id":          int64(1),
				"name":        "receptionist",
				"permissions": []string{"appointments:read"},
			},
		},
	}
}

func TestLoginPopulatesStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if body.Password != "correcthorse" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(sessionPayload("tok-123"))
	}))
	defer server.Close()

	store := client.NewSessionStore()
	api := client.NewAPI(server.URL, store)

	err := api.Login(context.Background(), "staff@reserva.local", "wrong")
	if !errors.Is(err, client.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.Authenticated() {
		t.Fatal("failed login must not populate the store")
	}

	if err := api.Login(context.Background(), "staff@reserva.local", "correcthorse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	tok, ok := store.Token()
	if !ok || tok != "tok-123" {
		t.Fatalf("token = %q, ok = %v", tok, ok)
	}
	if !store.HasPermission("appointments:read") {
		t.Fatal("permissions missing after login")
	}
}

func TestDoInjectsBearerAndClearsOnForbidden(t *testing.T) {
	var sawBearer string
	forbidden := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawBearer = r.Header.Get("Authorization")
		if forbidden {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer server.Close()

	store := client.NewSessionStore()
	store.Set(client.Session{Token: "tok-abc", ExpiresAt: time.Now().Add(time.Hour), User: client.User{ID: 7}})
	api := client.NewAPI(server.URL, store)

	res, err := api.Do(context.Background(), http.MethodGet, "/api/appointments", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	res.Body.Close()
	if sawBearer != "Bearer tok-abc" {
		t.Fatalf("authorization header = %q", sawBearer)
	}

	forbidden = true
	if _, err := api.Do(context.Background(), http.MethodGet, "/api/appointments", nil); !errors.Is(err, client.ErrSessionInvalidated) {
		t.Fatalf("expected ErrSessionInvalidated, got %v", err)
	}
	if store.Authenticated() {
		t.Fatal("rejection must clear the session mirror")
	}

	if _, err := api.Do(context.Background(), http.MethodGet, "/api/appointments", nil); !errors.Is(err, client.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after clear, got %v", err)
	}
}

func TestRefreshReplacesUserAndHandlesInvalidation(t *testing.T) {
	permissions := []string{"appointments:read", "appointments:write"}
	forbidden := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/session" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if forbidden {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":    int64(7),
				"email": "staff@reserva.local",
				"role": map[string]any{
					"id":          int64(1),
					"name":        "receptionist",
					"permissions": permissions,
				},
			},
		})
	}))
	defer server.Close()

	store := client.NewSessionStore()
	store.Set(client.Session{
		Token:     "tok-abc",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      client.User{ID: 7, Role: client.Role{Permissions: []string{"appointments:read"}}},
	})
	api := client.NewAPI(server.URL, store)

	if err := api.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !store.HasPermission("appointments:write") {
		t.Fatal("refresh must install the re-resolved permission set")
	}
	if tok, _ := store.Token(); tok != "tok-abc" {
		t.Fatalf("refresh must keep the token: %q", tok)
	}

	forbidden = true
	if err := api.Refresh(context.Background()); !errors.Is(err, client.ErrSessionInvalidated) {
		t.Fatalf("expected ErrSessionInvalidated, got %v", err)
	}
	if store.Authenticated() {
		t.Fatal("invalidated refresh must clear the store")
	}
	if err := api.Refresh(context.Background()); !errors.Is(err, client.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
