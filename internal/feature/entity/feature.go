package entity

import "time"

// Channel names. Each channel is an independent append-only series; the
// latest inserted row is the displayed value.
const (
	ChannelRunningText = "running_text"
	ChannelDate        = "date"
	ChannelTime        = "time"
	ChannelTemperature = "temperature"
	ChannelTextSpeed   = "running_text_speed"
)

// Modes and write sources.
const (
	ModeAuto   = "auto"
	ModeManual = "manual"

	SourceUser   = "user"
	SourceSensor = "sensor"
)

// State is one inserted row for a channel. Reads always take the most
// recent row by id, so the table doubles as a change log.
type State struct {
	ID        int64     `db:"id" json:"id"`
	Channel   string    `db:"channel" json:"channel"`
	Value     string    `db:"value" json:"value"`
	Mode      string    `db:"mode" json:"mode"`
	Source    string    `db:"source" json:"source"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Template is a reusable running-text snippet, independent of the current
// displayed value.
type Template struct {
	ID        int64     `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
