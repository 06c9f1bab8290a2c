package domain

import (
	"strings"
	"time"
)

type ID string

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           ID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the user without credential material.
type Summary struct {
	ID        ID        `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Changes lists the fields an update sets. Nil fields are left untouched.
type Changes struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *Role
}

func (c Changes) Empty() bool {
	return c.Email == nil && c.FirstName == nil && c.LastName == nil && c.Role == nil
}

func (c Changes) Apply(u *User) {
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.FirstName != nil {
		u.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		u.LastName = *c.LastName
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
}

// NormalizeEmail trims surrounding whitespace. Case is kept: emails are
// unique and matched exactly as stored.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
