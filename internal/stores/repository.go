package stores

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financehub/financehub/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const storeColumns = `id, name, location, address, phone, email, COALESCE(manager_id, ''), is_active, description, opening_hours, tax_id, created_at, updated_at`

func scanStore(row pgx.Row) (Store, error) {
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Location, &s.Address, &s.Phone, &s.Email, &s.ManagerID, &s.IsActive, &s.Description, &s.OpeningHours, &s.TaxID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Store{}, ErrStoreNotFound
	}
	return s, err
}

// ListStores returns stores ordered by name.
func (r *Repository) ListStores(ctx context.Context, filter ListFilter) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+storeColumns+` FROM stores
		WHERE ($1::text[] IS NULL OR id = ANY($1)) AND (NOT $2 OR is_active)
		ORDER BY name`, filter.IDs, filter.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStore fetches a store by id.
func (r *Repository) GetStore(ctx context.Context, id string) (Store, error) {
	return scanStore(r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id))
}

// InsertStore creates a store row.
func (r *Repository) InsertStore(ctx context.Context, s Store) (Store, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO stores (id, name, location, address, phone, email, manager_id, is_active, description, opening_hours, tax_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $12)
		RETURNING `+storeColumns,
		s.ID, s.Name, s.Location, s.Address, s.Phone, s.Email, s.ManagerID, s.IsActive, s.Description, s.OpeningHours, s.TaxID, s.CreatedAt)
	created, err := scanStore(row)
	if db.IsUniqueViolation(err) {
		return Store{}, ErrStoreNameTaken
	}
	return created, err
}

// UpdateStore overwrites the editable fields.
func (r *Repository) UpdateStore(ctx context.Context, s Store) (Store, error) {
	row := r.pool.QueryRow(ctx, `UPDATE stores SET name = $2, location = $3, address = $4, phone = $5, email = $6,
		manager_id = NULLIF($7, ''), is_active = $8, description = $9, opening_hours = $10, tax_id = $11, updated_at = $12
		WHERE id = $1 RETURNING `+storeColumns,
		s.ID, s.Name, s.Location, s.Address, s.Phone, s.Email, s.ManagerID, s.IsActive, s.Description, s.OpeningHours, s.TaxID, s.UpdatedAt)
	updated, err := scanStore(row)
	if db.IsUniqueViolation(err) {
		return Store{}, ErrStoreNameTaken
	}
	return updated, err
}

// DeleteStore removes a store without operations.
func (r *Repository) DeleteStore(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrStoreInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

const registerColumns = `cr.id, cr.store_id, cr.name, cr.is_active, cr.created_at,
	COALESCE((SELECT array_agg(cru.user_id ORDER BY cru.user_id) FROM cash_register_users cru WHERE cru.cash_register_id = cr.id), '{}')`

func scanRegister(row pgx.Row) (CashRegister, error) {
	var cr CashRegister
	err := row.Scan(&cr.ID, &cr.StoreID, &cr.Name, &cr.IsActive, &cr.CreatedAt, &cr.Cashiers)
	if errors.Is(err, pgx.ErrNoRows) {
		return CashRegister{}, ErrRegisterNotFound
	}
	return cr, err
}

func (r *Repository) queryRegisters(ctx context.Context, sql string, args ...any) ([]CashRegister, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CashRegister
	for rows.Next() {
		cr, err := scanRegister(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// ListRegisters returns every register of a store.
func (r *Repository) ListRegisters(ctx context.Context, storeID string) ([]CashRegister, error) {
	return r.queryRegisters(ctx, `SELECT `+registerColumns+` FROM cash_registers cr WHERE cr.store_id = $1 ORDER BY cr.name`, storeID)
}

// ListRegistersForUser returns the active registers of a store assigned to a user.
func (r *Repository) ListRegistersForUser(ctx context.Context, storeID, userID string) ([]CashRegister, error) {
	return r.queryRegisters(ctx, `SELECT `+registerColumns+` FROM cash_registers cr
		JOIN cash_register_users u ON u.cash_register_id = cr.id
		WHERE cr.store_id = $1 AND u.user_id = $2 AND cr.is_active
		ORDER BY cr.name`, storeID, userID)
}

// GetRegister fetches a register by id.
func (r *Repository) GetRegister(ctx context.Context, id string) (CashRegister, error) {
	return scanRegister(r.pool.QueryRow(ctx, `SELECT `+registerColumns+` FROM cash_registers cr WHERE cr.id = $1`, id))
}

// InsertRegister creates a register.
func (r *Repository) InsertRegister(ctx context.Context, cr CashRegister) (CashRegister, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO cash_registers (id, store_id, name, is_active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		cr.ID, cr.StoreID, cr.Name, cr.IsActive, cr.CreatedAt)
	switch {
	case db.IsUniqueViolation(err):
		return CashRegister{}, ErrRegisterTaken
	case db.IsForeignKeyViolation(err):
		return CashRegister{}, ErrStoreNotFound
	case err != nil:
		return CashRegister{}, err
	}
	return cr, nil
}

// SetRegisterActive flips the active flag.
func (r *Repository) SetRegisterActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE cash_registers SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRegisterNotFound
	}
	return nil
}

// AssignCashier links a user to a register.
func (r *Repository) AssignCashier(ctx context.Context, registerID, userID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO cash_register_users (cash_register_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, registerID, userID)
	if db.IsForeignKeyViolation(err) {
		if db.ConstraintName(err) == "cash_register_users_user_id_fkey" {
			return ErrUserNotFound
		}
		return ErrRegisterNotFound
	}
	return err
}

// UnassignCashier removes a user from a register.
func (r *Repository) UnassignCashier(ctx context.Context, registerID, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cash_register_users WHERE cash_register_id = $1 AND user_id = $2`, registerID, userID)
	return err
}

var _ RepositoryPort = (*Repository)(nil)
