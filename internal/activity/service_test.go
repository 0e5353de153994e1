package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webiot/signage-admin-core/internal/activity/entity"
)

type fakeEntries struct {
	rows   []entity.Entry
	nextID int64
}

func (f *fakeEntries) Insert(ctx context.Context, e *entity.Entry) error {
	f.nextID++
	e.ID = f.nextID
	e.UsedAt = time.Now()
	f.rows = append(f.rows, *e)
	return nil
}

func (f *fakeEntries) List(ctx context.Context) ([]entity.Entry, error) {
	out := make([]entity.Entry, len(f.rows))
	for i, r := range f.rows {
		out[len(f.rows)-1-i] = r
	}
	return out, nil
}

func (f *fakeEntries) Delete(ctx context.Context, id int64) (int64, error) {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeEntries) DeleteAll(ctx context.Context) error {
	f.rows = nil
	return nil
}

func TestAppendAndList(t *testing.T) {
	entries := &fakeEntries{}
	svc := NewService(nil, entries)
	ctx := context.Background()

	_ = svc.Append(ctx, 1, "Admin IoT", "Suhu", "Suhu diubah menjadi: 26.5°C (manual)")
	_ = svc.Append(ctx, 1, "Admin IoT", "Jam", "Jam diubah menjadi: 08:00")

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 entries, got %d", len(rows))
	}
	if rows[0].FeatureName != "Jam" {
		t.Fatalf("newest first expected, got %+v", rows[0])
	}
}

func TestDeleteTwice(t *testing.T) {
	entries := &fakeEntries{}
	svc := NewService(nil, entries)
	ctx := context.Background()

	_ = svc.Append(ctx, 1, "Admin IoT", "Suhu", "Suhu diubah menjadi: 25.0°C (auto)")
	id := entries.rows[0].ID

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete must be not-found, got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	entries := &fakeEntries{}
	svc := NewService(nil, entries)
	ctx := context.Background()

	_ = svc.Append(ctx, 1, "Admin IoT", "Suhu", "x")
	_ = svc.Append(ctx, 2, "Staf", "Tanggal", "y")
	if err := svc.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	rows, _ := svc.List(ctx)
	if len(rows) != 0 {
		t.Fatalf("log should be empty, got %d", len(rows))
	}
}
