package settings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores sections as JSON documents in app_settings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadSections returns every stored section payload keyed by name.
func (r *Repository) LoadSections(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT section, payload FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, err
		}
		out[name] = json.RawMessage(payload)
	}
	return out, rows.Err()
}

// SaveSection upserts a section payload.
func (r *Repository) SaveSection(ctx context.Context, section string, payload json.RawMessage, actorID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO app_settings (section, payload, updated_by, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (section) DO UPDATE SET payload = EXCLUDED.payload, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		section, []byte(payload), actorID, time.Now().UTC())
	return err
}

var _ RepositoryPort = (*Repository)(nil)
