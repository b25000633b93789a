package client

import (
	"testing"
	"time"
)

func staffSession(token string, expiresAt time.Time) Session {
	return Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User: User{
			ID:    1,
			Email: "staff@reserva.local",
			Role: Role{
				ID:          1,
				Name:        "receptionist",
				Permissions: []string{"Appointments:Read", "appointments:write"},
			},
		},
	}
}

func TestSetReplacesWholeSession(t *testing.T) {
	store := NewSessionStore()
	if store.Authenticated() {
		t.Fatal("empty store must not be authenticated")
	}

	expiry := time.Now().Add(time.Hour)
	store.Set(staffSession("tok-1", expiry))

	tok, ok := store.Token()
	if !ok || tok != "tok-1" {
		t.Fatalf("token = %q, ok = %v", tok, ok)
	}
	if !store.Authenticated() {
		t.Fatal("expected authenticated session")
	}
	user, ok := store.User()
	if !ok || user.Email != "staff@reserva.local" {
		t.Fatalf("user = %+v, ok = %v", user, ok)
	}

	store.Set(Session{Token: "tok-2", ExpiresAt: expiry, User: User{ID: 2, Role: Role{Permissions: []string{"reports:read"}}}})
	if store.HasPermission("appointments:read") {
		t.Fatal("old permissions must not survive a replacement")
	}
	if !store.HasPermission("reports:read") {
		t.Fatal("new permissions must be visible")
	}
}

func TestHasPermissionIsCaseInsensitiveMembership(t *testing.T) {
	store := NewSessionStore()
	store.Set(staffSession("tok", time.Now().Add(time.Hour)))

	for _, name := range []string{"appointments:read", "APPOINTMENTS:READ", " appointments:write "} {
		if !store.HasPermission(name) {
			t.Fatalf("expected %q to be granted", name)
		}
	}
	if store.HasPermission("reports:read") {
		t.Fatal("membership must not grant unheld permissions")
	}
	if store.HasPermission("") {
		t.Fatal("empty name must not match")
	}
}

func TestClearDropsEverything(t *testing.T) {
	store := NewSessionStore()
	store.Set(staffSession("tok", time.Now().Add(time.Hour)))
	store.Clear()

	if _, ok := store.Token(); ok {
		t.Fatal("token survived clear")
	}
	if _, ok := store.User(); ok {
		t.Fatal("user survived clear")
	}
	if store.HasPermission("appointments:read") {
		t.Fatal("permissions survived clear")
	}
	if store.Authenticated() {
		t.Fatal("cleared store reports authenticated")
	}
}

func TestLocalExpiryClearsOnDetection(t *testing.T) {
	store := NewSessionStore()
	current := time.Now()
	store.now = func() time.Time { return current }
	store.Set(staffSession("tok", current.Add(time.Minute)))

	if !store.Authenticated() {
		t.Fatal("session should be live before expiry")
	}
	current = current.Add(time.Minute)
	if store.Authenticated() {
		t.Fatal("session must expire at exactly the expiry instant")
	}
	if _, ok := store.Token(); ok {
		t.Fatal("expired session must be cleared, not merely hidden")
	}
}

func TestStaleResolutionIsDiscarded(t *testing.T) {
	store := NewSessionStore()
	expiry := time.Now().Add(time.Hour)
	store.Set(staffSession("tok-old", expiry))

	stale := store.BeginResolution()
	if !store.Resolving() {
		t.Fatal("expected resolving state")
	}

	// A fresh login lands while the resolution is in flight.
	store.Set(staffSession("tok-new", expiry))
	if store.Resolving() {
		t.Fatal("login must end the pending resolution")
	}

	applied := store.CompleteResolution(stale, staffSession("tok-stale", expiry))
	if applied {
		t.Fatal("stale completion must not apply")
	}
	if tok, _ := store.Token(); tok != "tok-new" {
		t.Fatalf("stale completion overwrote the store: token %q", tok)
	}
}

func TestAbandonResolutionKeepsState(t *testing.T) {
	store := NewSessionStore()
	store.Set(staffSession("tok", time.Now().Add(time.Hour)))

	epoch := store.BeginResolution()
	store.AbandonResolution(epoch)
	if store.Resolving() {
		t.Fatal("abandon must end the pending state")
	}
	if tok, _ := store.Token(); tok != "tok" {
		t.Fatalf("abandon must not touch the session: token %q", tok)
	}
}

func TestWatchTicksOnStateChanges(t *testing.T) {
	store := NewSessionStore()
	ch := store.Watch()

	store.Set(staffSession("tok", time.Now().Add(time.Hour)))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a tick after Set")
	}

	store.Clear()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a tick after Clear")
	}
}
