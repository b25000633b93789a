package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reserva-app/reserva/internal/audit"
	"github.com/reserva-app/reserva/internal/directory"
	"github.com/reserva-app/reserva/internal/observability"
	"github.com/reserva-app/reserva/internal/platform/httpx"
	"github.com/reserva-app/reserva/internal/token"
)

// Emitter receives audit records for allowed mutating invocations.
type Emitter interface {
	Emit(ctx context.Context, record audit.Record)
}

// Guard makes the authoritative allow/deny decision for every guarded
// operation. It holds only read-only state (codec secret, registry, tagger)
// plus stateless collaborators, so a single Guard serves all requests
// concurrently.
type Guard struct {
	codec    *token.Codec
	service  *Service
	registry *Registry
	tagger   *audit.Tagger
	emitter  Emitter
	policy   Policy
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// GuardConfig collects the guard's collaborators.
type GuardConfig struct {
	Codec    *token.Codec
	Service  *Service
	Registry *Registry
	Tagger   *audit.Tagger
	Emitter  Emitter
	Policy   Policy
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// NewGuard constructs a Guard.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{
		codec:    cfg.Codec,
		service:  cfg.Service,
		registry: cfg.Registry,
		tagger:   cfg.Tagger,
		emitter:  cfg.Emitter,
		policy:   cfg.Policy,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Decision is the terminal outcome of evaluating one request.
type Decision struct {
	Allowed bool
	Reason  string
	Detail  string
	Subject *directory.User
}

func deny(reason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}

// Evaluate runs the per-request state machine: bearer extraction, token
// verification, subject resolution, then requirement containment. It has no
// side effects; Protect is responsible for audit emission on allow.
func (g *Guard) Evaluate(ctx context.Context, bearer, operationID string) (Decision, error) {
	if bearer == "" {
		return deny(DenyNoToken, "missing bearer token"), nil
	}
	claims, err := g.codec.Verify(bearer, g.now())
	if err != nil {
		return deny(DenyTokenInvalid, "session is no longer valid"), nil
	}
	subject, err := g.service.Subject(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return deny(DenyUnknownSubject, "session is no longer valid"), nil
		}
		return Decision{}, err
	}
	if !subject.IsActive {
		return deny(DenyUnknownSubject, "session is no longer valid"), nil
	}
	op, declared := g.registry.Lookup(operationID)
	if !declared {
		if g.policy == PolicyDenyUndeclared {
			return deny(DenyUndeclaredOperation, "operation not permitted"), nil
		}
		return Decision{Allowed: true, Subject: subject}, nil
	}
	if len(op.Permissions) == 0 {
		return Decision{Allowed: true, Subject: subject}, nil
	}
	if !hasAllPermissions(subject.PermissionNames(), op.Permissions) {
		return deny(DenyInsufficientPermission, "insufficient permission"), nil
	}
	return Decision{Allowed: true, Subject: subject}, nil
}

// Protect wraps a handler with the guard. On deny the handler never runs
// and the response is a uniform 403; on allow the resolved subject is
// attached to the request context and, for mutating operations, the audit
// tag is emitted exactly once before the handler executes.
func (g *Guard) Protect(operationID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := g.Evaluate(r.Context(), bearerToken(r), operationID)
		if err != nil {
			if g.logger != nil {
				g.logger.Error("authorize", slog.String("operation", operationID), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !decision.Allowed {
			g.observe(operationID, decision.Reason)
			if g.logger != nil {
				g.logger.Warn("request denied",
					slog.String("operation", operationID),
					slog.String("reason", decision.Reason),
					slog.String("path", r.URL.Path))
			}
			// Every denial surfaces as the same rejection class; the
			// reason stays in the logs.
			httpx.Problem(w, http.StatusForbidden, "Forbidden", decision.Detail)
			return
		}
		g.observe(operationID, "allow")
		ctx := ContextWithSubject(r.Context(), decision.Subject)
		if op, ok := g.registry.Lookup(operationID); ok && op.Mutating {
			g.emitTag(ctx, operationID, decision.Subject)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Guard) emitTag(ctx context.Context, operationID string, subject *directory.User) {
	if g.tagger == nil || g.emitter == nil {
		return
	}
	tag, ok := g.tagger.Tag(operationID)
	if !ok {
		return
	}
	g.emitter.Emit(ctx, audit.Record{
		ActorID:     subject.ID,
		ActorEmail:  subject.Email,
		OperationID: operationID,
		Entity:      tag.Entity,
		Action:      tag.Action,
		Description: tag.Description,
		At:          g.now().UTC(),
	})
}

func (g *Guard) observe(operationID, outcome string) {
	if g.metrics != nil {
		g.metrics.ObserveDecision(operationID, outcome)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
