package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reserva-app/reserva/internal/auth"
	"github.com/reserva-app/reserva/internal/booking"
	"github.com/reserva-app/reserva/internal/observability"
	"github.com/reserva-app/reserva/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Guard              *rbac.Guard
	AuthHandler        *auth.Handler
	PermissionsHandler *rbac.PermissionsHandler
	BookingHandler     *booking.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Reserva defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, params.Guard, LoginRateLimit())
		})
		r.Route("/permissions", func(r chi.Router) {
			params.PermissionsHandler.MountRoutes(r, params.Guard)
		})
		params.BookingHandler.MountRoutes(r, params.Guard)
	})

	return r
}
