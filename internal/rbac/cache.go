package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reserva-app/reserva/internal/directory"
)

// Cache keeps resolved subjects (user, role, permission names) in Redis so
// the guard does not hit the directory on every request. A nil Cache (or
// nil client) degrades to calling the loader directly. Entries never carry
// the password hash.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type cachedPermission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type cachedSubject struct {
	ID          int64              `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	BranchID    *int64             `json:"branch_id,omitempty"`
	IsActive    bool               `json:"is_active"`
	RoleID      int64              `json:"role_id"`
	RoleName    string             `json:"role_name"`
	Permissions []cachedPermission `json:"permissions"`
}

func subjectKey(userID int64) string {
	return fmt.Sprintf("rbac:subject:%d", userID)
}

// Subject loads a subject through the cache, populating it via the loader
// on a miss.
func (c *Cache) Subject(ctx context.Context, userID int64, loader func(context.Context) (*directory.User, error)) (*directory.User, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := subjectKey(userID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedSubject
		if err := json.Unmarshal(payload, &cached); err == nil {
			return fromCached(cached), nil
		}
		// Corrupt entry: fall through and overwrite.
	} else if err != redis.Nil {
		return nil, err
	}
	user, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(toCached(user))
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return user, nil
}

// Invalidate drops the cached entry for a subject.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, subjectKey(userID)).Err()
}

func toCached(user *directory.User) cachedSubject {
	cached := cachedSubject{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		BranchID: user.BranchID,
		IsActive: user.IsActive,
		RoleID:   user.Role.ID,
		RoleName: user.Role.Name,
	}
	for _, p := range user.Role.Permissions {
		cached.Permissions = append(cached.Permissions, cachedPermission{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return cached
}

func fromCached(cached cachedSubject) *directory.User {
	user := &directory.User{
		ID:       cached.ID,
		Email:    cached.Email,
		Name:     cached.Name,
		BranchID: cached.BranchID,
		IsActive: cached.IsActive,
		Role: directory.Role{
			ID:   cached.RoleID,
			Name: cached.RoleName,
		},
	}
	for _, p := range cached.Permissions {
		user.Role.Permissions = append(user.Role.Permissions, directory.Permission{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return user
}
