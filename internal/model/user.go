// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// RoleAdmin is the only elevated role in the system. A user either carries
// it or is an ordinary user (empty role).
const RoleAdmin = "admin"

// User represents a registered identity.
//
// The email address is the natural key: every lookup, upsert, and the token
// claim all use the email, so there is no separate generated ID. The rest of
// the fields are the public profile the site displays.
//
// WHY Role string (not a bool)?
// The role is stored as an enumerated string ("admin" or empty) so further
// roles can be added without a schema change, and so the JSON shape matches
// what the frontend already consumes. `omitempty` keeps ordinary users from
// carrying a meaningless empty role field in responses.
type User struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	About      string    `json:"about"`
	Education  string    `json:"education"`
	Profession string    `json:"profession"`
	Address    string    `json:"address"`
	LinkedIn   string    `json:"linkedin"`
	Img        string    `json:"img"`
	Role       string    `json:"role,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the elevated role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpsertResult reports what a sign-in or profile upsert actually did.
// Created is true when a new identity record was inserted, false when an
// existing record was updated in place.
type UpsertResult struct {
	Created bool `json:"created"`
}
