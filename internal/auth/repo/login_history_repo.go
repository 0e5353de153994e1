package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/webiot/signage-admin-core/internal/auth/entity"
)

// LoginHistoryRepo persists successful login events.
type LoginHistoryRepo struct {
	db *sqlx.DB
}

func NewLoginHistoryRepo(db *sqlx.DB) *LoginHistoryRepo { return &LoginHistoryRepo{db: db} }

// EnsureTable creates the login_history table if not exists (idempotent).
func (r *LoginHistoryRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS login_history (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL,
  display_name TEXT NOT NULL,
  role TEXT NOT NULL,
  login_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_login_history_login_at ON login_history(login_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Append records one login event.
func (r *LoginHistoryRepo) Append(ctx context.Context, userID int64, displayName, role string) error {
	const q = `INSERT INTO login_history (user_id, display_name, role) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, userID, displayName, role)
	return err
}

// List returns login events, newest first.
func (r *LoginHistoryRepo) List(ctx context.Context) ([]entity.LoginHistory, error) {
	const q = `SELECT id, user_id, display_name, role, login_at FROM login_history ORDER BY login_at DESC`
	rows := []entity.LoginHistory{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes one entry by id. Returns the number of rows removed so the
// caller can distinguish a missing entry.
func (r *LoginHistoryRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_history WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
