package client

import (
	"testing"
	"time"
)

func TestRedirectForEdgeRules(t *testing.T) {
	store := NewSessionStore()
	guard := NewRouteGuard(store)

	// Unauthenticated: protected paths bounce to login, login stays put.
	if to, ok := guard.RedirectFor("/appointments"); !ok || to != DefaultLoginPath {
		t.Fatalf("unauthenticated protected path: to=%q ok=%v", to, ok)
	}
	if _, ok := guard.RedirectFor(DefaultLoginPath); ok {
		t.Fatal("unauthenticated login path must not redirect")
	}

	store.Set(staffSession("tok", time.Now().Add(time.Hour)))

	// Authenticated: login bounces to the landing view, protected paths stay.
	if to, ok := guard.RedirectFor(DefaultLoginPath); !ok || to != DefaultLandingPath {
		t.Fatalf("authenticated login path: to=%q ok=%v", to, ok)
	}
	if _, ok := guard.RedirectFor("/appointments"); ok {
		t.Fatal("authenticated protected path must not redirect")
	}
}

func TestResolveOutcomes(t *testing.T) {
	store := NewSessionStore()
	guard := NewRouteGuard(store)

	if out := guard.Resolve("appointments:read"); out.State != ViewRedirect || out.RedirectTo != DefaultLoginPath {
		t.Fatalf("no session: %+v", out)
	}

	store.Set(staffSession("tok", time.Now().Add(time.Hour)))

	if out := guard.Resolve("appointments:read"); out.State != ViewRender {
		t.Fatalf("held permission: %+v", out)
	}
	if out := guard.Resolve(""); out.State != ViewRender {
		t.Fatalf("authentication-only view: %+v", out)
	}
	if out := guard.Resolve("reports:read"); out.State != ViewRedirect || out.RedirectTo != DefaultUnauthorizedPath {
		t.Fatalf("missing permission: %+v", out)
	}

	store.BeginResolution()
	if out := guard.Resolve("appointments:read"); out.State != ViewPending {
		t.Fatalf("in-flight resolution must render pending, got %+v", out)
	}
}

func TestResolveAfterInvalidationRedirectsToLogin(t *testing.T) {
	store := NewSessionStore()
	guard := NewRouteGuard(store)
	store.Set(staffSession("tok", time.Now().Add(time.Hour)))

	if out := guard.Resolve("appointments:read"); out.State != ViewRender {
		t.Fatalf("precondition: %+v", out)
	}
	store.Clear()
	if out := guard.Resolve("appointments:read"); out.State != ViewRedirect || out.RedirectTo != DefaultLoginPath {
		t.Fatalf("after invalidation: %+v", out)
	}
}
