package rbac_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/reserva-app/reserva/internal/directory"
	"github.com/reserva-app/reserva/internal/rbac"
)

type countingStore struct {
	stubStore
	findByID int
}

func (s *countingStore) FindByID(ctx context.Context, id int64) (*directory.User, error) {
	s.findByID++
	return s.stubStore.FindByID(ctx, id)
}

func TestSubjectCacheReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := rbac.NewCache(client, time.Minute)

	user := writerUser()
	user.PasswordHash = "$2a$10$secret"
	store := &countingStore{stubStore: stubStore{users: map[int64]*directory.User{user.ID: user}}}
	service := rbac.NewService(store, cache)

	ctx := context.Background()
	first, err := service.Subject(ctx, user.ID)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := service.Subject(ctx, user.ID)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if store.findByID != 1 {
		t.Fatalf("expected one directory load, got %d", store.findByID)
	}
	if first.Email != second.Email || len(second.PermissionNames()) != 2 {
		t.Fatalf("cached subject mismatch: %+v", second)
	}
	if second.PasswordHash != "" {
		t.Fatalf("cached subject must not carry a password hash")
	}
}

func TestSubjectCacheInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := rbac.NewCache(client, time.Minute)

	user := readerUser()
	store := &countingStore{stubStore: stubStore{users: map[int64]*directory.User{user.ID: user}}}
	service := rbac.NewService(store, cache)

	ctx := context.Background()
	if _, err := service.Subject(ctx, user.ID); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cache.Invalidate(ctx, user.ID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := service.Subject(ctx, user.ID); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if store.findByID != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", store.findByID)
	}
}

func TestSubjectCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := rbac.NewCache(client, time.Minute)

	user := readerUser()
	store := &countingStore{stubStore: stubStore{users: map[int64]*directory.User{user.ID: user}}}
	service := rbac.NewService(store, cache)

	ctx := context.Background()
	if _, err := service.Subject(ctx, user.ID); err != nil {
		t.Fatalf("load: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := service.Subject(ctx, user.ID); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if store.findByID != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", store.findByID)
	}
}
