package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store loads users with their role and permissions.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const userQuery = `
SELECT u.id, u.email, u.name, u.branch_id, u.password_hash, u.is_active,
       u.created_at, u.updated_at,
       r.id, r.name, r.description
FROM users u
JOIN roles r ON r.id = u.role_id
`

// FindByEmail fetches a user by email, including role and permissions.
func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, userQuery+"WHERE u.email = $1", email)
}

// FindByID fetches a user by id, including role and permissions.
func (s *PGStore) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.findOne(ctx, userQuery+"WHERE u.id = $1", id)
}

func (s *PGStore) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.BranchID, &user.PasswordHash,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&user.Role.ID, &user.Role.Name, &user.Role.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	perms, err := s.rolePermissions(ctx, user.Role.ID)
	if err != nil {
		return nil, err
	}
	user.Role.Permissions = perms
	return &user, nil
}

func (s *PGStore) rolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `
SELECT p.id, p.name, p.description
FROM permissions p
JOIN role_permissions rp ON rp.permission_id = p.id
WHERE rp.role_id = $1
ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// ListPermissions returns every permission ordered by name.
func (s *PGStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

var _ Store = (*PGStore)(nil)
