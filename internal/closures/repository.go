package closures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financehub/financehub/internal/operations"
	"github.com/financehub/financehub/internal/platform/db"
	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

// PGRepository implements Repository on PostgreSQL. Day operations are read
// through the operations repository.
type PGRepository struct {
	*operations.Repository
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{Repository: operations.NewRepository(pool), pool: pool}
}

const closureColumns = `c.id, c.store_id, COALESCE(s.name, ''), c.date, c.shift_name, c.bcv_rate,
	c.total_cash_usd, c.total_zelle_usd, c.total_mobile_payment_usd, c.total_pdv_banesco_usd, c.total_cashea_usd,
	c.opening_float, c.calculated_total_usd, c.total_expenses_usd, c.net_profit_usd,
	c.declared_cash_usd, c.declared_zelle_usd, c.declared_mobile_payment_usd, c.declared_pdv_banesco_usd, c.declared_cashea_usd,
	c.declared_total_usd, c.difference_usd, c.is_balanced,
	c.petty_cash_usd, c.stored_cash_usd, c.observations, c.surplus_notes, COALESCE(c.created_by, ''), c.created_at`

func scanClosure(row pgx.Row, extra ...any) (reconciliation.DailyClosure, error) {
	var (
		c   reconciliation.DailyClosure
		day time.Time
	)
	dest := []any{
		&c.ID, &c.StoreID, &c.StoreName, &day, &c.ShiftName, &c.BCVRate,
		&c.Calculated.Cash, &c.Calculated.Zelle, &c.Calculated.MobilePayment, &c.Calculated.PDVBanesco, &c.Calculated.Cashea,
		&c.Opening, &c.CalculatedTotalUSD, &c.TotalExpensesUSD, &c.NetProfitUSD,
		&c.Declared.Cash, &c.Declared.Zelle, &c.Declared.MobilePayment, &c.Declared.PDVBanesco, &c.Declared.Cashea,
		&c.DeclaredTotalUSD, &c.DifferenceUSD, &c.IsBalanced,
		&c.PettyCashUSD, &c.StoredCashUSD, &c.Observations, &c.SurplusNotes, &c.CreatedBy, &c.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, ErrClosureNotFound
		}
		return c, err
	}
	c.Date = day.Format(time.DateOnly)
	return c, nil
}

// ClosureExists reports whether the shift was already closed.
func (r *PGRepository) ClosureExists(ctx context.Context, storeID, date, shiftName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM daily_closures WHERE store_id = $1 AND date = $2::date AND shift_name = $3)`,
		storeID, date, shiftName).Scan(&exists)
	return exists, err
}

// InsertClosure persists a closure and its audit entry in one transaction. The
// shift unique constraint maps to ErrClosureExists.
func (r *PGRepository) InsertClosure(ctx context.Context, c reconciliation.DailyClosure, entry shared.AuditLog) error {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertClosure(ctx, tx, c); err != nil {
			return err
		}
		return shared.WriteAudit(ctx, tx, entry)
	})
	if db.IsUniqueViolation(err) && db.ConstraintName(err) == "daily_closures_shift_unique" {
		return ErrClosureExists
	}
	return err
}

func insertClosure(ctx context.Context, exec shared.Execer, c reconciliation.DailyClosure) error {
	_, err := exec.Exec(ctx, `INSERT INTO daily_closures (
		id, store_id, date, shift_name, bcv_rate,
		total_cash_usd, total_zelle_usd, total_mobile_payment_usd, total_pdv_banesco_usd, total_cashea_usd,
		opening_float, calculated_total_usd, total_expenses_usd, net_profit_usd,
		declared_cash_usd, declared_zelle_usd, declared_mobile_payment_usd, declared_pdv_banesco_usd, declared_cashea_usd,
		declared_total_usd, difference_usd, is_balanced,
		petty_cash_usd, stored_cash_usd, observations, surplus_notes, created_by, created_at
	) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, NULLIF($27, ''), $28)`,
		c.ID, c.StoreID, c.Date, c.ShiftName, c.BCVRate,
		c.Calculated.Cash, c.Calculated.Zelle, c.Calculated.MobilePayment, c.Calculated.PDVBanesco, c.Calculated.Cashea,
		c.Opening, c.CalculatedTotalUSD, c.TotalExpensesUSD, c.NetProfitUSD,
		c.Declared.Cash, c.Declared.Zelle, c.Declared.MobilePayment, c.Declared.PDVBanesco, c.Declared.Cashea,
		c.DeclaredTotalUSD, c.DifferenceUSD, c.IsBalanced,
		c.PettyCashUSD, c.StoredCashUSD, c.Observations, c.SurplusNotes, c.CreatedBy, c.CreatedAt,
	)
	return err
}

// GetClosure fetches a closure with its store name.
func (r *PGRepository) GetClosure(ctx context.Context, id string) (reconciliation.DailyClosure, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+closureColumns+` FROM daily_closures c LEFT JOIN stores s ON s.id = c.store_id WHERE c.id = $1`, id)
	return scanClosure(row)
}

// ListClosures returns a page of closures, newest date first, and the total match count.
func (r *PGRepository) ListClosures(ctx context.Context, filter ListFilter) ([]reconciliation.DailyClosure, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.StoreIDs != nil {
		where = append(where, "c.store_id = ANY("+arg(filter.StoreIDs)+"::text[])")
	}
	if filter.StoreID != "" {
		where = append(where, "c.store_id = "+arg(filter.StoreID))
	}
	if filter.From != "" {
		where = append(where, "c.date >= "+arg(filter.From)+"::date")
	}
	if filter.To != "" {
		where = append(where, "c.date <= "+arg(filter.To)+"::date")
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(c.observations ILIKE "+p+" OR c.surplus_notes ILIKE "+p+" OR s.name ILIKE "+p+")")
	}
	sql := `SELECT ` + closureColumns + `, COUNT(*) OVER () FROM daily_closures c LEFT JOIN stores s ON s.id = c.store_id`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY c.date DESC, c.created_at DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var (
		out   []reconciliation.DailyClosure
		total int
	)
	for rows.Next() {
		c, err := scanClosure(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
