package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/webiot/signage-admin-core/internal/activity/entity"
)

// ActivityRepo persists the feature_usage audit trail.
type ActivityRepo struct {
	db *sqlx.DB
}

func NewActivityRepo(db *sqlx.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// EnsureTable creates the feature_usage table if not exists (idempotent).
func (r *ActivityRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS feature_usage (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL,
  display_name TEXT NOT NULL,
  feature_name TEXT NOT NULL,
  description TEXT NOT NULL,
  used_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_feature_usage_used_at ON feature_usage(used_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Insert appends one entry.
func (r *ActivityRepo) Insert(ctx context.Context, e *entity.Entry) error {
	const q = `INSERT INTO feature_usage (user_id, display_name, feature_name, description)
		VALUES ($1, $2, $3, $4) RETURNING id, used_at`
	row := r.db.QueryRowxContext(ctx, q, e.UserID, e.DisplayName, e.FeatureName, e.Description)
	return row.Scan(&e.ID, &e.UsedAt)
}

// List returns entries, newest first.
func (r *ActivityRepo) List(ctx context.Context) ([]entity.Entry, error) {
	const q = `SELECT id, user_id, display_name, feature_name, description, used_at
		FROM feature_usage ORDER BY used_at DESC`
	rows := []entity.Entry{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes one entry by id and returns the number of rows removed.
func (r *ActivityRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feature_usage WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAll clears the log.
func (r *ActivityRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feature_usage`)
	return err
}
