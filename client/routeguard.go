package client

// Default view paths; override the fields on RouteGuard to relocate them.
const (
	DefaultLoginPath        = "/login"
	DefaultLandingPath      = "/dashboard"
	DefaultUnauthorizedPath = "/unauthorized"
)

// RouteGuard gates client-side navigation against the session store. It has
// two enforcement points: RedirectFor runs before a view is constructed,
// and Resolve wraps a protected view's render. Neither grants anything the
// server would refuse; they only avoid round trips that are known to fail.
type RouteGuard struct {
	store            *SessionStore
	LoginPath        string
	LandingPath      string
	UnauthorizedPath string
}

// NewRouteGuard constructs a RouteGuard with default paths.
func NewRouteGuard(store *SessionStore) *RouteGuard {
	return &RouteGuard{
		store:            store,
		LoginPath:        DefaultLoginPath,
		LandingPath:      DefaultLandingPath,
		UnauthorizedPath: DefaultUnauthorizedPath,
	}
}

// RedirectFor is the pre-render edge check. Unauthenticated navigation to a
// protected path redirects to login; authenticated navigation to the login
// path itself bounces to the landing view so a live session never re-enters
// the login flow.
func (g *RouteGuard) RedirectFor(path string) (string, bool) {
	authenticated := g.store.Authenticated()
	if path == g.LoginPath {
		if authenticated {
			return g.LandingPath, true
		}
		return "", false
	}
	if !authenticated {
		return g.LoginPath, true
	}
	return "", false
}

// ViewState is the outcome of wrapping a protected view.
type ViewState int

const (
	// ViewPending means session resolution is still in flight; render a
	// placeholder, never the protected content.
	ViewPending ViewState = iota
	// ViewRender means the view may be shown.
	ViewRender
	// ViewRedirect means navigation must move to Outcome.RedirectTo.
	ViewRedirect
)

// Outcome describes what the view wrapper should do right now.
type Outcome struct {
	State      ViewState
	RedirectTo string
}

// Resolve evaluates a protected view that requires the named permission
// (empty means authentication only). Callers re-invoke it on every tick of
// the store's Watch channel so the decision tracks session changes.
func (g *RouteGuard) Resolve(requiredPermission string) Outcome {
	if g.store.Resolving() {
		return Outcome{State: ViewPending}
	}
	if !g.store.Authenticated() {
		return Outcome{State: ViewRedirect, RedirectTo: g.LoginPath}
	}
	if requiredPermission != "" && !g.store.HasPermission(requiredPermission) {
		return Outcome{State: ViewRedirect, RedirectTo: g.UnauthorizedPath}
	}
	return Outcome{State: ViewRender}
}
