package users

import "context"

// Repository is the credential store. Implementations must enforce the
// username and email uniqueness invariants atomically at write time; the
// service-level pre-check only exists to produce field-specific errors.
//
// Lookups return ErrNotFound when no account matches. Insert and Update
// return *DuplicateCredentialError when a unique constraint is violated.
type Repository interface {
	// FindByID returns the account with the given id.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns the account with the given email. Used for login.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsernameOrEmail returns an account holding either credential.
	// When both match different accounts, the username match wins.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// FindConflict returns an account other than excludeID holding either
	// credential. Used by update to pre-check uniqueness.
	FindConflict(ctx context.Context, excludeID int64, username, email string) (*User, error)

	// Insert stores a new account, assigning id and timestamps.
	Insert(ctx context.Context, u *User) (*User, error)

	// Update overwrites the mutable fields of an existing account and
	// bumps its update timestamp.
	Update(ctx context.Context, u *User) error

	// Delete removes an account, reporting whether one existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// ListAll returns every account in ascending id order.
	ListAll(ctx context.Context) ([]User, error)
}
