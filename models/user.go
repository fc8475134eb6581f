package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleAdmin UserRole = "Admin"
	RoleUser  UserRole = "User"
)

// RoleForPosition maps the informal "position" field to a role:
// "Admin" in any letter case grants the Admin role.
func RoleForPosition(position *string) UserRole {
	if position != nil && strings.EqualFold(*position, string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

type User struct {
	ID                    string     `json:"id" db:"id"`
	UserName              string     `json:"user_name" db:"user_name"`
	Email                 string     `json:"email" db:"email"`
	Name                  string     `json:"name" db:"name"`
	Age                   int        `json:"age" db:"age"`
	Position              *string    `json:"position,omitempty" db:"position"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	RefreshToken          *string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiresAt *time.Time `json:"-" db:"refresh_token_expires_at"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`

	Roles []UserRole `json:"roles" db:"-"`
}

func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
