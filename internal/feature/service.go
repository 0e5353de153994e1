package feature

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/webiot/signage-admin-core/internal/feature/entity"
	featurerepo "github.com/webiot/signage-admin-core/internal/feature/repo"
	"github.com/webiot/signage-admin-core/internal/metrics"
)

// dateReadOffset is the fixed correction applied to the stored date on the
// read path. It is a hardcoded WIB (UTC+7) adjustment, deliberately not
// derived from the system timezone.
const dateReadOffset = 7 * time.Hour

// defaultTextSpeed is returned when no running-text speed was ever stored.
const defaultTextSpeed = 50

var (
	ErrNotFound       = errors.New("no state stored for channel")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Feature display names used in audit entries.
const (
	featureText        = "Teks Berjalan"
	featureDate        = "Tanggal"
	featureTime        = "Jam"
	featureTemperature = "Suhu"
)

// StateStore is the slice of the feature repository the service uses.
type StateStore interface {
	Insert(ctx context.Context, st *entity.State) error
	Latest(ctx context.Context, channel string) (*entity.State, error)
}

// TemplateStore persists reusable text snippets.
type TemplateStore interface {
	Insert(ctx context.Context, t *entity.Template) error
	List(ctx context.Context) ([]entity.Template, error)
}

// UsageRecorder appends audit entries for manual feature mutations.
type UsageRecorder interface {
	Append(ctx context.Context, userID int64, displayName, featureName, description string) error
}

// Actor identifies the authenticated user performing a manual edit.
type Actor struct {
	UserID      int64
	DisplayName string
}

// Service arbitrates channel state between manual edits and sensor input.
type Service struct {
	states    StateStore
	templates TemplateStore
	usage     UsageRecorder
	logger    *zap.SugaredLogger
}

// NewService constructs a Service. Nil stores are built from db using the
// sqlx repositories; tests pass fakes instead.
func NewService(db *sqlx.DB, states StateStore, templates TemplateStore, usage UsageRecorder, logger *zap.SugaredLogger) *Service {
	if states == nil {
		states = featurerepo.NewFeatureRepo(db)
	}
	if templates == nil {
		templates = featurerepo.NewTemplateRepo(db)
	}
	return &Service{states: states, templates: templates, usage: usage, logger: logger}
}

// recordUsage appends an audit entry. Failures are logged, never surfaced:
// the state mutation has already committed.
func (s *Service) recordUsage(ctx context.Context, actor Actor, featureName, description string) {
	if s.usage == nil {
		return
	}
	if err := s.usage.Append(ctx, actor.UserID, actor.DisplayName, featureName, description); err != nil {
		s.logger.Warnw("record feature usage failed", "feature", featureName, "err", err)
	}
}

func normalizeMode(mode string) (string, error) {
	switch mode {
	case entity.ModeAuto, entity.ModeManual:
		return mode, nil
	case "":
		return entity.ModeManual, nil
	default:
		return "", ErrInvalidPayload
	}
}

// EditText sets a new running text. An optional speed accompanies the edit
// and is stored as its own channel row.
func (s *Service) EditText(ctx context.Context, actor Actor, text, mode string, speed *int) (*entity.State, error) {
	if text == "" {
		return nil, ErrInvalidPayload
	}
	m, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	st := &entity.State{
		Channel:   entity.ChannelRunningText,
		Value:     text,
		Mode:      m,
		Source:    entity.SourceUser,
		UpdatedBy: actor.DisplayName,
	}
	if err := s.states.Insert(ctx, st); err != nil {
		return nil, fmt.Errorf("insert text state: %w", err)
	}
	if speed != nil {
		sp := &entity.State{
			Channel:   entity.ChannelTextSpeed,
			Value:     strconv.Itoa(*speed),
			Mode:      m,
			Source:    entity.SourceUser,
			UpdatedBy: actor.DisplayName,
		}
		if err := s.states.Insert(ctx, sp); err != nil {
			return nil, fmt.Errorf("insert speed state: %w", err)
		}
	}
	s.recordUsage(ctx, actor, featureText, fmt.Sprintf("Teks berjalan diubah menjadi: %q", text))
	return st, nil
}

// GetRunningText returns the latest running text.
func (s *Service) GetRunningText(ctx context.Context) (*entity.State, error) {
	return s.latest(ctx, entity.ChannelRunningText)
}

// GetTextSpeed returns the latest stored speed, or the default when the
// channel was never written.
func (s *Service) GetTextSpeed(ctx context.Context) (int, error) {
	st, err := s.latest(ctx, entity.ChannelTextSpeed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return defaultTextSpeed, nil
		}
		return 0, err
	}
	v, err := strconv.Atoi(st.Value)
	if err != nil {
		return defaultTextSpeed, nil
	}
	return v, nil
}

// EditDate stores a new display date as submitted.
func (s *Service) EditDate(ctx context.Context, actor Actor, date, mode string) (*entity.State, error) {
	if date == "" {
		return nil, ErrInvalidPayload
	}
	if _, err := parseStoredDate(date); err != nil {
		return nil, ErrInvalidPayload
	}
	m, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	st := &entity.State{
		Channel:   entity.ChannelDate,
		Value:     date,
		Mode:      m,
		Source:    entity.SourceUser,
		UpdatedBy: actor.DisplayName,
	}
	if err := s.states.Insert(ctx, st); err != nil {
		return nil, fmt.Errorf("insert date state: %w", err)
	}
	s.recordUsage(ctx, actor, featureDate, "Tanggal diubah menjadi: "+date)
	return st, nil
}

// GetDate returns the latest date row with the fixed +7h offset applied to
// the value.
func (s *Service) GetDate(ctx context.Context) (*entity.State, error) {
	st, err := s.latest(ctx, entity.ChannelDate)
	if err != nil {
		return nil, err
	}
	t, err := parseStoredDate(st.Value)
	if err != nil {
		// unparseable stored value is served as-is
		return st, nil
	}
	adjusted := *st
	adjusted.Value = t.Add(dateReadOffset).Format(time.RFC3339)
	return &adjusted, nil
}

// EditTime stores a new display clock value (e.g. "15:04").
func (s *Service) EditTime(ctx context.Context, actor Actor, clock, mode string) (*entity.State, error) {
	if clock == "" {
		return nil, ErrInvalidPayload
	}
	m, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	st := &entity.State{
		Channel:   entity.ChannelTime,
		Value:     clock,
		Mode:      m,
		Source:    entity.SourceUser,
		UpdatedBy: actor.DisplayName,
	}
	if err := s.states.Insert(ctx, st); err != nil {
		return nil, fmt.Errorf("insert time state: %w", err)
	}
	s.recordUsage(ctx, actor, featureTime, "Jam diubah menjadi: "+clock)
	return st, nil
}

// GetTime returns the latest clock row. No offset is applied here; only the
// date channel carries the correction.
func (s *Service) GetTime(ctx context.Context) (*entity.State, error) {
	return s.latest(ctx, entity.ChannelTime)
}

// ManualTemperature records an authenticated temperature edit. The submitted
// mode is stored as-is; setting mode=auto with a manual value is accepted.
func (s *Service) ManualTemperature(ctx context.Context, actor Actor, temperature float64, mode string) (*entity.State, error) {
	m, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	value := strconv.FormatFloat(temperature, 'f', 1, 64)
	st := &entity.State{
		Channel:   entity.ChannelTemperature,
		Value:     value,
		Mode:      m,
		Source:    entity.SourceUser,
		UpdatedBy: actor.DisplayName,
	}
	if err := s.states.Insert(ctx, st); err != nil {
		return nil, fmt.Errorf("insert temperature state: %w", err)
	}
	s.recordUsage(ctx, actor, featureTemperature,
		fmt.Sprintf("Suhu diubah menjadi: %s°C (%s)", value, m))
	return st, nil
}

// SensorTemperature ingests a reading from the display's sensor. It always
// writes mode=auto/source=sensor regardless of the current stored mode, so
// it can overwrite a manual setting.
func (s *Service) SensorTemperature(ctx context.Context, temperature float64) (*entity.State, error) {
	st := &entity.State{
		Channel: entity.ChannelTemperature,
		Value:   strconv.FormatFloat(temperature, 'f', 1, 64),
		Mode:    entity.ModeAuto,
		Source:  entity.SourceSensor,
	}
	if err := s.states.Insert(ctx, st); err != nil {
		return nil, fmt.Errorf("insert sensor state: %w", err)
	}
	metrics.SensorReadings.Inc()
	return st, nil
}

// GetTemperature returns the latest temperature row.
func (s *Service) GetTemperature(ctx context.Context) (*entity.State, error) {
	return s.latest(ctx, entity.ChannelTemperature)
}

// SaveTemplate appends a reusable text snippet.
func (s *Service) SaveTemplate(ctx context.Context, actor Actor, content string) (*entity.Template, error) {
	if content == "" {
		return nil, ErrInvalidPayload
	}
	t := &entity.Template{Content: content, CreatedBy: actor.DisplayName}
	if err := s.templates.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

// ListTemplates returns saved snippets, newest first.
func (s *Service) ListTemplates(ctx context.Context) ([]entity.Template, error) {
	return s.templates.List(ctx)
}

func (s *Service) latest(ctx context.Context, channel string) (*entity.State, error) {
	st, err := s.states.Latest(ctx, channel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest %s: %w", channel, err)
	}
	return st, nil
}

// parseStoredDate accepts the formats clients submit dates in.
func parseStoredDate(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}
