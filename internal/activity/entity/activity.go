package entity

import "time"

// Entry is one audit record of a feature change. Entries are append-only;
// they are never mutated, only deleted.
type Entry struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	DisplayName string    `db:"display_name" json:"name"`
	FeatureName string    `db:"feature_name" json:"feature_name"`
	Description string    `db:"description" json:"description"`
	UsedAt      time.Time `db:"used_at" json:"used_at"`
}
