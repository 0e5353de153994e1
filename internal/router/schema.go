package router

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	activityrepo "github.com/webiot/signage-admin-core/internal/activity/repo"
	authrepo "github.com/webiot/signage-admin-core/internal/auth/repo"
	featurerepo "github.com/webiot/signage-admin-core/internal/feature/repo"
)

// EnsureSchema creates all tables if they do not exist yet. Idempotent; a
// convenience for development setups without a migration tool.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if err := authrepo.NewUserRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("users table: %w", err)
	}
	if err := authrepo.NewLoginHistoryRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("login_history table: %w", err)
	}
	if err := featurerepo.NewFeatureRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("feature_states table: %w", err)
	}
	if err := featurerepo.NewTemplateRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("text_templates table: %w", err)
	}
	if err := activityrepo.NewActivityRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("feature_usage table: %w", err)
	}
	return nil
}
