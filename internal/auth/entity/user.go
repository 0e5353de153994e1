package entity

import "time"

// Role values accepted at registration.
const (
	RoleAdmin     = "admin"
	RoleDosen     = "dosen"
	RoleMahasiswa = "mahasiswa"
	RoleStaff     = "staff"
)

// User represents an account row in the `users` table.
type User struct {
	ID             int64      `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"firstName"`
	LastName       string     `db:"last_name" json:"lastName"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Role           string     `db:"role" json:"role"`
	NIDN           *string    `db:"nidn" json:"nidn,omitempty"`
	NIM            *string    `db:"nim" json:"nim,omitempty"`
	ProfilePicture *string    `db:"profile_picture" json:"profile_picture,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"-"`
}

// DisplayName is the name embedded in tokens and audit entries.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// LoginHistory is one successful login event.
type LoginHistory struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	DisplayName string    `db:"display_name" json:"name"`
	Role        string    `db:"role" json:"status"`
	LoginAt     time.Time `db:"login_at" json:"login_at"`
}
