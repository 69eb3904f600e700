package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financehub/financehub/internal/platform/db"
	"github.com/financehub/financehub/internal/rbac"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, full_name, password_hash, role, COALESCE(assigned_store_id, ''), permissions, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		u     User
		role  string
		perms []string
	)
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &role, &u.AssignedStoreID, &perms, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Role = rbac.Role(role)
	u.Permissions = make([]rbac.Permission, 0, len(perms))
	for _, p := range perms {
		u.Permissions = append(u.Permissions, rbac.Permission(p))
	}
	return u, nil
}

func permStrings(perms []rbac.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}

// ListUsers returns accounts ordered by name.
func (r *Repository) ListUsers(ctx context.Context, f ListFilter) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR assigned_store_id = $2)
		  AND ($3 = '' OR full_name ILIKE '%' || $3 || '%' OR email ILIKE '%' || $3 || '%')
		  AND (NOT $4 OR is_active)
		ORDER BY full_name, email`, string(f.Role), f.StoreID, f.Search, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUser fetches an account by id.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail fetches an account by case-insensitive email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// InsertUser creates an account row.
func (r *Repository) InsertUser(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (id, email, full_name, password_hash, role, assigned_store_id, permissions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $9)
		RETURNING `+userColumns,
		u.ID, u.Email, u.FullName, u.PasswordHash, string(u.Role), u.AssignedStoreID, permStrings(u.Permissions), u.IsActive, u.CreatedAt)
	created, err := scanUser(row)
	return created, mapWriteError(err)
}

// UpdateUser overwrites the profile fields.
func (r *Repository) UpdateUser(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET full_name = $2, role = $3, assigned_store_id = NULLIF($4, ''),
		permissions = $5, is_active = $6, updated_at = $7
		WHERE id = $1 RETURNING `+userColumns,
		u.ID, u.FullName, string(u.Role), u.AssignedStoreID, permStrings(u.Permissions), u.IsActive, u.UpdatedAt)
	updated, err := scanUser(row)
	return updated, mapWriteError(err)
}

// SetPasswordHash replaces the stored hash.
func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrEmailTaken
	case db.IsForeignKeyViolation(err):
		return ErrStoreNotFound
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
