// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// User is an employee known to the board.
//
// The ID is NOT generated here. It is the opaque subject identifier assigned
// by the external identity provider, and it stays the same for the lifetime
// of the account. That makes it a natural primary key and the conflict key
// for upserts: every authenticated request can safely "re-upsert" the caller.
//
// WHY POINTERS FOR THE PROFILE FIELDS?
// The identity provider may not send an email, a name, or an avatar. A nil
// pointer serialises as JSON null and maps to SQL NULL, which lets the upsert
// keep a previously known value instead of overwriting it with "".
type User struct {
	ID              string    `json:"id"              db:"id"                gorm:"primaryKey"`
	Email           *string   `json:"email"           db:"email"`
	FirstName       *string   `json:"firstName"       db:"first_name"`
	LastName        *string   `json:"lastName"        db:"last_name"`
	ProfileImageURL *string   `json:"profileImageUrl" db:"profile_image_url"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}

// TableName pins the gorm table name.
func (User) TableName() string { return "users" }

// DisplayName returns "First Last" when a name is known, otherwise the
// local part of the email, otherwise the ID.
func (u *User) DisplayName() string {
	first, last := deref(u.FirstName), deref(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	if email := deref(u.Email); email != "" {
		local, _, _ := strings.Cut(email, "@")
		return local
	}
	return u.ID
}

// StringPtr returns nil for "" and &s otherwise.
// Handy when copying optional claims into a User.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
