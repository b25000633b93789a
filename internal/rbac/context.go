package rbac

import (
	"context"

	"github.com/reserva-app/reserva/internal/directory"
)

type subjectContextKey struct{}

// ContextWithSubject stores the resolved caller in context.
func ContextWithSubject(ctx context.Context, user *directory.User) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, user)
}

// SubjectFromContext extracts the resolved caller from context. It is nil
// outside guarded handlers.
func SubjectFromContext(ctx context.Context) *directory.User {
	user, _ := ctx.Value(subjectContextKey{}).(*directory.User)
	return user
}
