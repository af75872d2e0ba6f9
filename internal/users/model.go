// Package users holds the account model, the credential store and the
// identity service that orchestrates registration, login and account CRUD.
package users

import "time"

// DefaultRole is assigned to every account at creation. Role changes are
// an administrative action outside the API surface.
const DefaultRole = "User"

// RoleAdmin is required for destructive operations (account deletion).
const RoleAdmin = "Admin"

// User is the persisted account record. PasswordHash must never appear in
// an outward-facing representation; convert with Public() before returning
// anything to a caller.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the outward view of an account: every field except the
// password hash, role and update timestamp.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// NewUser carries the fields needed to create an account. The HTTP layer
// validates syntax (lengths, email format, password strength) before this
// reaches the service.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateRequest carries the mutable profile fields. Password and role are
// deliberately absent: this operation never touches them.
type UpdateRequest struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}
