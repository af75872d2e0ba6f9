package users

import "errors"

var (
	// ErrNotFound is returned by lookups, updates and deletes on an id
	// that has no account.
	ErrNotFound = errors.New("user not found")

	// ErrAuthenticationFailed is the single outcome for every failed
	// login. Unknown email and wrong password are indistinguishable.
	ErrAuthenticationFailed = errors.New("invalid email or password")
)

// Unique credential fields.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// DuplicateCredentialError reports which unique field collided with an
// existing account. Raised by the service pre-check and by the store when
// a concurrent write wins the race.
type DuplicateCredentialError struct {
	Field string
}

func (e *DuplicateCredentialError) Error() string {
	return e.Field + " already exists"
}
