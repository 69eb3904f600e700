package rates

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores rates in exchange_rates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetRate returns the stored rate of a date.
func (r *Repository) GetRate(ctx context.Context, date string) (Rate, error) {
	var (
		rate Rate
		day  time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT date, rate::float8, source, fetched_at FROM exchange_rates WHERE date = $1::date`, date).
		Scan(&day, &rate.Value, &rate.Source, &rate.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	rate.Date = day.Format(time.DateOnly)
	return rate, nil
}

// UpsertRate stores or replaces the rate of a date.
func (r *Repository) UpsertRate(ctx context.Context, rate Rate) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO exchange_rates (date, rate, source, fetched_at)
		VALUES ($1::date, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, fetched_at = EXCLUDED.fetched_at`,
		rate.Date, rate.Value, rate.Source, rate.FetchedAt)
	return err
}

var _ RepositoryPort = (*Repository)(nil)
