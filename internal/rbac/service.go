package rbac

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/reserva-app/reserva/internal/directory"
)

// Service resolves subjects for the guard. Subjects are read through the
// Redis cache when one is configured, and concurrent directory loads for
// the same subject are collapsed into a single query.
type Service struct {
	store directory.Store
	cache *Cache
	group singleflight.Group
}

// NewService constructs a Service.
func NewService(store directory.Store, cache *Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Subject loads the user for a verified token subject, with role and
// permissions attached. Returns directory.ErrNotFound when the account no
// longer exists.
func (s *Service) Subject(ctx context.Context, userID int64) (*directory.User, error) {
	return s.cache.Subject(ctx, userID, func(ctx context.Context) (*directory.User, error) {
		key := "subject:" + strconv.FormatInt(userID, 10)
		resultChan := s.group.DoChan(key, func() (any, error) {
			// Detached from the request context so an early caller
			// cancellation does not fail the shared load.
			return s.store.FindByID(context.WithoutCancel(ctx), userID)
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-resultChan:
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Val.(*directory.User), nil
		}
	})
}

// ListPermissions enumerates every permission in the directory.
func (s *Service) ListPermissions(ctx context.Context) ([]directory.Permission, error) {
	return s.store.ListPermissions(ctx)
}
