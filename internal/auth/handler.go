package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/reserva-app/reserva/internal/directory"
	"github.com/reserva-app/reserva/internal/platform/httpx"
	"github.com/reserva-app/reserva/internal/rbac"
)

// OpSessionShow identifies the session introspection operation. It carries
// no permission requirement: any authenticated caller may read its own
// session.
const OpSessionShow = "auth.session"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// RegisterOperations declares the handler's guarded operations.
func (h *Handler) RegisterOperations(registry *rbac.Registry) {
	registry.MustRegister(rbac.Operation{ID: OpSessionShow})
}

// MountRoutes registers auth routes on the provided router. Login is the
// only unauthenticated endpoint and carries its own rate limit; session
// introspection sits behind the guard so the client can re-resolve its
// mirror of the session.
func (h *Handler) MountRoutes(r chi.Router, guard *rbac.Guard, loginLimit ...func(http.Handler) http.Handler) {
	r.With(loginLimit...).Post("/login", h.handleLogin)
	r.Method(http.MethodGet, "/session", guard.Protect(OpSessionShow, http.HandlerFunc(h.handleSession)))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type roleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

type userResponse struct {
	ID       int64        `json:"id"`
	Email    string       `json:"email"`
	Name     string       `json:"name"`
	BranchID *int64       `json:"branch_id,omitempty"`
	Role     roleResponse `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type sessionResponse struct {
	User userResponse `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// One message for every credential mismatch.
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "check your credentials")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.User),
	})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	subject := rbac.SubjectFromContext(r.Context())
	if subject == nil {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "session is no longer valid")
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{User: toUserResponse(subject)})
}

func toUserResponse(user *directory.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		BranchID: user.BranchID,
		Role: roleResponse{
			ID:          user.Role.ID,
			Name:        user.Role.Name,
			Description: user.Role.Description,
			Permissions: user.PermissionNames(),
		},
	}
}
