package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/webiot/signage-admin-core/internal/activity/entity"
	activityrepo "github.com/webiot/signage-admin-core/internal/activity/repo"
)

var ErrNotFound = errors.New("activity entry not found")

// EntryStore is the slice of the repository the service uses.
type EntryStore interface {
	Insert(ctx context.Context, e *entity.Entry) error
	List(ctx context.Context) ([]entity.Entry, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) error
}

// Service owns the append-only feature usage log. Any authenticated caller
// may delete entries; there is no ownership scoping.
type Service struct {
	entries EntryStore
}

func NewService(db *sqlx.DB, entries EntryStore) *Service {
	if entries == nil {
		entries = activityrepo.NewActivityRepo(db)
	}
	return &Service{entries: entries}
}

// Append satisfies feature.UsageRecorder.
func (s *Service) Append(ctx context.Context, userID int64, displayName, featureName, description string) error {
	e := &entity.Entry{
		UserID:      userID,
		DisplayName: displayName,
		FeatureName: featureName,
		Description: description,
	}
	if err := s.entries.Insert(ctx, e); err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	return nil
}

// List returns entries, newest first.
func (s *Service) List(ctx context.Context) ([]entity.Entry, error) {
	return s.entries.List(ctx)
}

// Delete removes one entry; a second delete of the same id yields ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.entries.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete usage: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll clears the log.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.entries.DeleteAll(ctx)
}
