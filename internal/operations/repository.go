package operations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/financehub/financehub/internal/reconciliation"
)

// Repository persists day operations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const incomeColumns = `id, store_id, COALESCE(cash_register_id, ''), date, amount_usd, amount_bs, bcv_rate, payment_method, is_opening, description, payment_details, COALESCE(created_by, ''), created_at`

func scanIncome(row pgx.Row) (reconciliation.IncomeRecord, error) {
	var (
		rec    reconciliation.IncomeRecord
		day    time.Time
		method string
	)
	err := row.Scan(&rec.ID, &rec.StoreID, &rec.CashRegisterID, &day, &rec.AmountUSD, &rec.AmountBS, &rec.BCVRate, &method, &rec.IsOpening, &rec.Description, &rec.PaymentDetails, &rec.CreatedBy, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, ErrIncomeNotFound
	}
	rec.Date = day.Format(time.DateOnly)
	rec.PaymentMethod = reconciliation.PaymentMethod(method)
	return rec, err
}

const expenseColumns = `id, store_id, COALESCE(cash_register_id, ''), date, amount_usd, amount_bs, bcv_rate, payment_source, description, COALESCE(created_by, ''), created_at`

func scanExpense(row pgx.Row) (reconciliation.ExpenseRecord, error) {
	var (
		rec    reconciliation.ExpenseRecord
		day    time.Time
		source string
	)
	err := row.Scan(&rec.ID, &rec.StoreID, &rec.CashRegisterID, &day, &rec.AmountUSD, &rec.AmountBS, &rec.BCVRate, &source, &rec.Description, &rec.CreatedBy, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, ErrExpenseNotFound
	}
	rec.Date = day.Format(time.DateOnly)
	rec.PaymentSource = reconciliation.PaymentMethod(source)
	return rec, err
}

// InsertIncome stores an income record.
func (r *Repository) InsertIncome(ctx context.Context, rec reconciliation.IncomeRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO daily_incomes (id, store_id, cash_register_id, date, amount_usd, amount_bs, bcv_rate, payment_method, is_opening, description, payment_details, created_by, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4::date, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13)`,
		rec.ID, rec.StoreID, rec.CashRegisterID, rec.Date, rec.AmountUSD, rec.AmountBS, rec.BCVRate, string(rec.PaymentMethod), rec.IsOpening, rec.Description, rec.PaymentDetails, rec.CreatedBy, rec.CreatedAt)
	return err
}

// InsertExpense stores an expense record.
func (r *Repository) InsertExpense(ctx context.Context, rec reconciliation.ExpenseRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO daily_expenses (id, store_id, cash_register_id, date, amount_usd, amount_bs, bcv_rate, payment_source, description, created_by, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4::date, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)`,
		rec.ID, rec.StoreID, rec.CashRegisterID, rec.Date, rec.AmountUSD, rec.AmountBS, rec.BCVRate, string(rec.PaymentSource), rec.Description, rec.CreatedBy, rec.CreatedAt)
	return err
}

// ListIncomes returns the incomes of a scope in insertion order.
func (r *Repository) ListIncomes(ctx context.Context, scope reconciliation.Scope) ([]reconciliation.IncomeRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+incomeColumns+` FROM daily_incomes
		WHERE store_id = $1 AND date = $2::date AND ($3 = '' OR cash_register_id = $3)
		ORDER BY created_at, id`, scope.StoreID, scope.Date, scope.CashRegisterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reconciliation.IncomeRecord
	for rows.Next() {
		rec, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListExpenses returns the expenses of a scope in insertion order.
func (r *Repository) ListExpenses(ctx context.Context, scope reconciliation.Scope) ([]reconciliation.ExpenseRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM daily_expenses
		WHERE store_id = $1 AND date = $2::date AND ($3 = '' OR cash_register_id = $3)
		ORDER BY created_at, id`, scope.StoreID, scope.Date, scope.CashRegisterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reconciliation.ExpenseRecord
	for rows.Next() {
		rec, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetIncome fetches an income by id.
func (r *Repository) GetIncome(ctx context.Context, id string) (reconciliation.IncomeRecord, error) {
	return scanIncome(r.pool.QueryRow(ctx, `SELECT `+incomeColumns+` FROM daily_incomes WHERE id = $1`, id))
}

// GetExpense fetches an expense by id.
func (r *Repository) GetExpense(ctx context.Context, id string) (reconciliation.ExpenseRecord, error) {
	return scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM daily_expenses WHERE id = $1`, id))
}

// DeleteIncome removes an income.
func (r *Repository) DeleteIncome(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM daily_incomes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIncomeNotFound
	}
	return nil
}

// DeleteExpense removes an expense.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM daily_expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// DayClosed reports whether any closure exists for the store and date.
func (r *Repository) DayClosed(ctx context.Context, storeID, date string) (bool, error) {
	var closed bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM daily_closures WHERE store_id = $1 AND date = $2::date)`, storeID, date).Scan(&closed)
	return closed, err
}

var _ RepositoryPort = (*Repository)(nil)
