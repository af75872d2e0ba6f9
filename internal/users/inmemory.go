package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is a mutex-guarded map implementation of Repository.
// It backs the testing environment and the package tests, and enforces
// the same uniqueness invariants as the Postgres store: duplicates are
// rejected at write time, under the lock.
type InMemoryRepository struct {
	mu     sync.Mutex
	users  map[int64]User
	nextID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:  make(map[int64]User),
		nextID: 1,
	}
}

func (r *InMemoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.findMatchLocked(0, username, email)
}

func (r *InMemoryRepository) FindConflict(_ context.Context, excludeID int64, username, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.findMatchLocked(excludeID, username, email)
}

// findMatchLocked returns an account other than excludeID matching either
// credential, preferring a username match. Caller holds the lock.
func (r *InMemoryRepository) findMatchLocked(excludeID int64, username, email string) (*User, error) {
	var emailMatch *User
	for id := range r.users {
		u := r.users[id]
		if u.ID == excludeID {
			continue
		}
		if u.Username == username {
			return &u, nil
		}
		if u.Email == email && emailMatch == nil {
			emailMatch = &u
		}
	}
	if emailMatch != nil {
		return emailMatch, nil
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) Insert(_ context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, &DuplicateCredentialError{Field: FieldUsername}
		}
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, &DuplicateCredentialError{Field: FieldEmail}
		}
	}

	now := time.Now().UTC()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u

	return u, nil
}

func (r *InMemoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return ErrNotFound
	}

	for _, existing := range r.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return &DuplicateCredentialError{Field: FieldUsername}
		}
	}
	for _, existing := range r.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return &DuplicateCredentialError{Field: FieldEmail}
		}
	}

	stored.Username = u.Username
	stored.Email = u.Email
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = stored
	u.UpdatedAt = stored.UpdatedAt

	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *InMemoryRepository) ListAll(_ context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}
