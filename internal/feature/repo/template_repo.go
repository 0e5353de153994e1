package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/webiot/signage-admin-core/internal/feature/entity"
)

// TemplateRepo stores reusable running-text snippets. Append and list only;
// there is no edit or delete.
type TemplateRepo struct {
	db *sqlx.DB
}

func NewTemplateRepo(db *sqlx.DB) *TemplateRepo { return &TemplateRepo{db: db} }

// EnsureTable creates the text_templates table if not exists (idempotent).
func (r *TemplateRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS text_templates (
  id BIGSERIAL PRIMARY KEY,
  content TEXT NOT NULL,
  created_by TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Insert appends a snippet.
func (r *TemplateRepo) Insert(ctx context.Context, t *entity.Template) error {
	const q = `INSERT INTO text_templates (content, created_by) VALUES ($1, $2) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, q, t.Content, t.CreatedBy)
	return row.Scan(&t.ID, &t.CreatedAt)
}

// List returns snippets, newest first.
func (r *TemplateRepo) List(ctx context.Context) ([]entity.Template, error) {
	const q = `SELECT id, content, created_by, created_at FROM text_templates ORDER BY id DESC`
	rows := []entity.Template{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
