package booking

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/reserva-app/reserva/internal/audit"
	"github.com/reserva-app/reserva/internal/platform/httpx"
	"github.com/reserva-app/reserva/internal/rbac"
)

// Operation identifiers for the appointment surface.
const (
	OpAppointmentsList   = "appointments.list"
	OpAppointmentsCreate = "appointments.create"
	OpAppointmentsCancel = "appointments.cancel"
	OpDashboardSummary   = "dashboard.summary"
)

// Handler wires HTTP endpoints for appointments.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo, validator: validator.New()}
}

// RegisterOperations declares requirement sets and audit tags for the
// appointment operations.
func (h *Handler) RegisterOperations(registry *rbac.Registry, tagger *audit.Tagger) {
	registry.MustRegister(rbac.Operation{ID: OpAppointmentsList, Permissions: []string{"appointments:read"}})
	registry.MustRegister(rbac.Operation{ID: OpAppointmentsCreate, Permissions: []string{"appointments:read", "appointments:write"}, Mutating: true})
	registry.MustRegister(rbac.Operation{ID: OpAppointmentsCancel, Permissions: []string{"appointments:write"}, Mutating: true})
	registry.MustRegister(rbac.Operation{ID: OpDashboardSummary, Permissions: []string{"reports:read"}})

	tagger.MustRegister(OpAppointmentsCreate, audit.Tag{
		Entity:      "appointment",
		Action:      "create",
		Description: "booked a new appointment",
	})
	tagger.MustRegister(OpAppointmentsCancel, audit.Tag{
		Entity:      "appointment",
		Action:      "cancel",
		Description: "cancelled an appointment",
	})
}

// MountRoutes registers appointment routes behind the guard.
func (h *Handler) MountRoutes(r chi.Router, guard *rbac.Guard) {
	r.Method(http.MethodGet, "/appointments", guard.Protect(OpAppointmentsList, http.HandlerFunc(h.list)))
	r.Method(http.MethodPost, "/appointments", guard.Protect(OpAppointmentsCreate, http.HandlerFunc(h.create)))
	r.Method(http.MethodPost, "/appointments/{id}/cancel", guard.Protect(OpAppointmentsCancel, http.HandlerFunc(h.cancel)))
	r.Method(http.MethodGet, "/dashboard/summary", guard.Protect(OpDashboardSummary, http.HandlerFunc(h.summary)))
}

type appointmentResponse struct {
	ID           int64     `json:"id"`
	BranchID     *int64    `json:"branch_id,omitempty"`
	CustomerName string    `json:"customer_name"`
	ServiceName  string    `json:"service_name"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Status       string    `json:"status"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, to := listWindow(r)
	appts, err := h.repo.List(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list appointments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]appointmentResponse, len(appts))
	for i, a := range appts {
		out[i] = toAppointmentResponse(a)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createRequest struct {
	BranchID     *int64    `json:"branch_id"`
	CustomerName string    `json:"customer_name" validate:"required"`
	ServiceName  string    `json:"service_name" validate:"required"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "customer, service, and a valid time window are required")
		return
	}
	subject := rbac.SubjectFromContext(r.Context())
	if subject == nil {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "session is no longer valid")
		return
	}
	appt, err := h.repo.Create(r.Context(), Appointment{
		BranchID:     req.BranchID,
		CustomerName: req.CustomerName,
		ServiceName:  req.ServiceName,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Status:       StatusScheduled,
		CreatedBy:    subject.ID,
	})
	if err != nil {
		h.logger.Error("create appointment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	if err := h.repo.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "appointment not found")
			return
		}
		h.logger.Error("cancel appointment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Upcoming  int64 `json:"upcoming"`
	Today     int64 `json:"today"`
	Cancelled int64 `json:"cancelled"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Summarize(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summaryResponse{Upcoming: s.Upcoming, Today: s.Today, Cancelled: s.Cancelled})
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		BranchID:     a.BranchID,
		CustomerName: a.CustomerName,
		ServiceName:  a.ServiceName,
		StartsAt:     a.StartsAt,
		EndsAt:       a.EndsAt,
		Status:       a.Status,
	}
}

func listWindow(r *http.Request) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7)
	to := now.AddDate(0, 0, 30)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			to = parsed
		}
	}
	return from, to
}
