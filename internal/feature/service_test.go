package feature

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/webiot/signage-admin-core/internal/feature/entity"
)

type fakeStates struct {
	rows   []entity.State
	nextID int64
}

func (f *fakeStates) Insert(ctx context.Context, st *entity.State) error {
	f.nextID++
	st.ID = f.nextID
	st.CreatedAt = time.Now()
	f.rows = append(f.rows, *st)
	return nil
}

func (f *fakeStates) Latest(ctx context.Context, channel string) (*entity.State, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Channel == channel {
			st := f.rows[i]
			return &st, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeTemplates struct {
	rows []entity.Template
}

func (f *fakeTemplates) Insert(ctx context.Context, t *entity.Template) error {
	t.ID = int64(len(f.rows) + 1)
	t.CreatedAt = time.Now()
	f.rows = append(f.rows, *t)
	return nil
}

func (f *fakeTemplates) List(ctx context.Context) ([]entity.Template, error) {
	return f.rows, nil
}

type fakeUsage struct {
	entries []string
}

func (f *fakeUsage) Append(ctx context.Context, userID int64, displayName, featureName, description string) error {
	f.entries = append(f.entries, description)
	return nil
}

func newTestService() (*Service, *fakeStates, *fakeTemplates, *fakeUsage) {
	states := &fakeStates{}
	templates := &fakeTemplates{}
	usage := &fakeUsage{}
	svc := NewService(nil, states, templates, usage, zap.NewNop().Sugar())
	return svc, states, templates, usage
}

var actor = Actor{UserID: 1, DisplayName: "Admin IoT"}

func TestLastInsertWins(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	for _, text := range []string{"Selamat datang", "Rapat pukul 10", "Libur nasional"} {
		if _, err := svc.EditText(ctx, actor, text, "manual", nil); err != nil {
			t.Fatalf("edit text: %v", err)
		}
	}
	st, err := svc.GetRunningText(ctx)
	if err != nil {
		t.Fatalf("get text: %v", err)
	}
	if st.Value != "Libur nasional" {
		t.Fatalf("read must return the most recent insert, got %q", st.Value)
	}
}

func TestSensorAlwaysTaggedAutoSensor(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	// a manual setting first
	if _, err := svc.ManualTemperature(ctx, actor, 22.0, "manual"); err != nil {
		t.Fatalf("manual: %v", err)
	}
	// sensor write goes through regardless of the stored manual mode
	if _, err := svc.SensorTemperature(ctx, 27.35); err != nil {
		t.Fatalf("sensor: %v", err)
	}

	st, err := svc.GetTemperature(ctx)
	if err != nil {
		t.Fatalf("get temperature: %v", err)
	}
	if st.Mode != entity.ModeAuto || st.Source != entity.SourceSensor {
		t.Fatalf("sensor row must be auto/sensor, got %s/%s", st.Mode, st.Source)
	}
	if st.Value != "27.3" {
		t.Fatalf("value formatted to one decimal, got %q", st.Value)
	}
}

func TestManualTemperatureAuditEntry(t *testing.T) {
	svc, _, _, usage := newTestService()

	st, err := svc.ManualTemperature(context.Background(), actor, 26.5, "manual")
	if err != nil {
		t.Fatalf("manual temperature: %v", err)
	}
	if st.Mode != entity.ModeManual || st.Source != entity.SourceUser {
		t.Fatalf("manual row must be manual/user, got %s/%s", st.Mode, st.Source)
	}
	want := "Suhu diubah menjadi: 26.5°C (manual)"
	if len(usage.entries) != 1 || usage.entries[0] != want {
		t.Fatalf("want audit entry %q, got %v", want, usage.entries)
	}
}

func TestPermissiveModeTransition(t *testing.T) {
	// setting mode=auto with a manual value is accepted as-is
	svc, _, _, _ := newTestService()
	st, err := svc.ManualTemperature(context.Background(), actor, 20.0, "auto")
	if err != nil {
		t.Fatalf("manual with auto mode: %v", err)
	}
	if st.Mode != entity.ModeAuto || st.Source != entity.SourceUser {
		t.Fatalf("got %s/%s", st.Mode, st.Source)
	}
}

func TestDateReadOffset(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.EditDate(ctx, actor, "2025-06-01", "manual"); err != nil {
		t.Fatalf("edit date: %v", err)
	}
	st, err := svc.GetDate(ctx)
	if err != nil {
		t.Fatalf("get date: %v", err)
	}
	// midnight UTC plus the fixed 7-hour correction
	want := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if st.Value != want {
		t.Fatalf("want %s, got %s", want, st.Value)
	}
}

func TestGetTextSpeedDefault(t *testing.T) {
	svc, _, _, _ := newTestService()
	speed, err := svc.GetTextSpeed(context.Background())
	if err != nil {
		t.Fatalf("get speed: %v", err)
	}
	if speed != defaultTextSpeed {
		t.Fatalf("want default %d, got %d", defaultTextSpeed, speed)
	}
}

func TestEditTextWithSpeed(t *testing.T) {
	svc, states, _, _ := newTestService()
	ctx := context.Background()

	sp := 75
	if _, err := svc.EditText(ctx, actor, "Pengumuman", "manual", &sp); err != nil {
		t.Fatalf("edit text: %v", err)
	}
	speed, err := svc.GetTextSpeed(ctx)
	if err != nil {
		t.Fatalf("get speed: %v", err)
	}
	if speed != 75 {
		t.Fatalf("want 75, got %d", speed)
	}
	if len(states.rows) != 2 {
		t.Fatalf("expected text row plus speed row, got %d rows", len(states.rows))
	}
}

func TestGetEmptyChannel(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.GetTemperature(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTemplates(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SaveTemplate(ctx, actor, ""); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("empty template must be rejected, got %v", err)
	}
	if _, err := svc.SaveTemplate(ctx, actor, "Selamat datang di kampus"); err != nil {
		t.Fatalf("save template: %v", err)
	}
	list, err := svc.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(list) != 1 || list[0].Content != "Selamat datang di kampus" {
		t.Fatalf("unexpected templates %+v", list)
	}
}

func TestInvalidMode(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.EditText(context.Background(), actor, "x", "turbo", nil); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("want ErrInvalidPayload, got %v", err)
	}
}
