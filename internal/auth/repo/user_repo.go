package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/webiot/signage-admin-core/internal/auth/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  nidn TEXT,
  nim TEXT,
  profile_picture TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and returns the new ID.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	const q = `INSERT INTO users (first_name, last_name, email, password_hash, role, nidn, nim)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := r.db.QueryRowxContext(ctx, q, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.NIDN, u.NIM)
	if err := row.Scan(&u.ID); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// GetByEmail returns a user matched by email or sql.ErrNoRows.
// Callers must pass a normalized (lowercased) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, first_name, last_name, email, password_hash, role, nidn, nim, profile_picture, created_at, updated_at
		FROM users WHERE email=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT id, first_name, last_name, email, password_hash, role, nidn, nim, profile_picture, created_at, updated_at
		FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// EmailExists reports whether a user with the given normalized email exists.
// Check-then-insert is not atomic; the UNIQUE constraint is the backstop.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, email); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateProfile updates the mutable profile fields. Passing a nil picture
// keeps the stored value.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *entity.User) error {
	const q = `UPDATE users SET first_name=$2, last_name=$3, nidn=$4, nim=$5,
		profile_picture=COALESCE($6, profile_picture), updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, u.ID, u.FirstName, u.LastName, u.NIDN, u.NIM, u.ProfilePicture)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("no rows updated")
	}
	return nil
}

// UpdatePassword rewrites the password hash for the user with the given email.
func (r *UserRepo) UpdatePassword(ctx context.Context, email, hash string) error {
	const q = `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE email=$1`
	_, err := r.db.ExecContext(ctx, q, email, hash)
	return err
}
