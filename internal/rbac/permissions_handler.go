package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reserva-app/reserva/internal/platform/httpx"
)

// OpPermissionsList identifies the permission listing operation.
const OpPermissionsList = "permissions.list"

// PermissionsHandler serves the permission vocabulary consumed by the
// client's role administration forms.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service}
}

// RegisterOperations declares the handler's operations on the registry.
func (h *PermissionsHandler) RegisterOperations(registry *Registry) {
	registry.MustRegister(Operation{ID: OpPermissionsList, Permissions: []string{"permissions:read"}})
}

// MountRoutes registers permission routes behind the guard.
func (h *PermissionsHandler) MountRoutes(r chi.Router, guard *Guard) {
	r.Method(http.MethodGet, "/", guard.Protect(OpPermissionsList, http.HandlerFunc(h.listPermissions)))
}

type permissionResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list permissions", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	out := make([]permissionResponse, len(perms))
	for i, p := range perms {
		out[i] = permissionResponse{ID: p.ID, Name: p.Name, Description: p.Description}
	}
	httpx.JSON(w, http.StatusOK, out)
}
