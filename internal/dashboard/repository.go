package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the dashboard aggregates against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const windowFilter = `($1::text[] IS NULL OR c.store_id = ANY($1)) AND c.date BETWEEN $2::date AND $3::date`

// Totals sums sales and expenses over the window.
func (r *Repository) Totals(ctx context.Context, w Window) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(c.calculated_total_usd), 0)::float8, COALESCE(SUM(c.total_expenses_usd), 0)::float8
		FROM daily_closures c WHERE `+windowFilter, w.StoreIDs, w.From, w.To).Scan(&t.Sales, &t.Expenses)
	return t, err
}

// Daily returns per-day sums in ascending date order. Days without closures are omitted.
func (r *Repository) Daily(ctx context.Context, w Window) ([]ChartPoint, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.date, SUM(c.calculated_total_usd)::float8, SUM(c.total_expenses_usd)::float8
		FROM daily_closures c WHERE `+windowFilter+`
		GROUP BY c.date ORDER BY c.date`, w.StoreIDs, w.From, w.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChartPoint
	for rows.Next() {
		var (
			p   ChartPoint
			day time.Time
		)
		if err := rows.Scan(&day, &p.Sales, &p.Expenses); err != nil {
			return nil, err
		}
		p.Date = day.Format(time.DateOnly)
		out = append(out, p)
	}
	return out, rows.Err()
}

// TopStore returns the name of the store with the highest sales, or "".
func (r *Repository) TopStore(ctx context.Context, w Window) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT s.name FROM daily_closures c JOIN stores s ON s.id = c.store_id
		WHERE `+windowFilter+`
		GROUP BY s.id, s.name ORDER BY SUM(c.calculated_total_usd) DESC, s.name LIMIT 1`, w.StoreIDs, w.From, w.To).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// CountActiveStores counts active stores among ids, or all active stores when ids is nil.
func (r *Repository) CountActiveStores(ctx context.Context, ids []string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores WHERE is_active AND ($1::text[] IS NULL OR id = ANY($1))`, ids).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
