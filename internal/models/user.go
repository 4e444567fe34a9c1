package models

import (
	"time"

	"github.com/google/uuid"
)

// Role gates endpoint access. Every route lists its full permitted set;
// there is no implied hierarchy between roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"` // Argon2id encoded, never serialized

	Role         Role    `json:"role"`
	Confirmed    bool    `json:"confirmed"`
	Avatar       *string `json:"avatar,omitempty"`
	RefreshToken *string `json:"-"`
}
