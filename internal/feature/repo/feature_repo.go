package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/webiot/signage-admin-core/internal/feature/entity"
)

// FeatureRepo persists channel state as an append-only series of rows.
type FeatureRepo struct {
	db *sqlx.DB
}

func NewFeatureRepo(db *sqlx.DB) *FeatureRepo { return &FeatureRepo{db: db} }

// EnsureTable creates the feature_states table if not exists (idempotent).
func (r *FeatureRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS feature_states (
  id BIGSERIAL PRIMARY KEY,
  channel TEXT NOT NULL,
  value TEXT NOT NULL,
  mode TEXT NOT NULL,
  source TEXT NOT NULL,
  updated_by TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_feature_states_channel_id ON feature_states(channel, id DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Insert appends a new state row. No overwrite, no conflict detection:
// concurrent writers to one channel both succeed and the later id wins.
func (r *FeatureRepo) Insert(ctx context.Context, st *entity.State) error {
	const q = `INSERT INTO feature_states (channel, value, mode, source, updated_by)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, q, st.Channel, st.Value, st.Mode, st.Source, st.UpdatedBy)
	return row.Scan(&st.ID, &st.CreatedAt)
}

// Latest returns the most recently inserted row for the channel, or
// sql.ErrNoRows when the channel has never been written.
func (r *FeatureRepo) Latest(ctx context.Context, channel string) (*entity.State, error) {
	const q = `SELECT id, channel, value, mode, source, updated_by, created_at
		FROM feature_states WHERE channel=$1 ORDER BY id DESC LIMIT 1`
	var st entity.State
	if err := r.db.GetContext(ctx, &st, q, channel); err != nil {
		return nil, err
	}
	return &st, nil
}
