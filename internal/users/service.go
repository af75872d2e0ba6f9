package users

import (
	"context"
	"errors"
	"fmt"

	"usermgmt/internal/auth"
)

// Service orchestrates the credential store, the password hasher and the
// token manager to implement registration, login, account CRUD and role
// checks. It holds no state of its own; concurrent use is safe as long
// as the store enforces its constraints atomically.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens *auth.TokenManager
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens *auth.TokenManager) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Register creates an account with the default role and returns a signed
// token for it. Colliding credentials fail with *DuplicateCredentialError;
// username is reported when both fields collide.
func (s *Service) Register(ctx context.Context, nu NewUser) (string, error) {
	u, err := s.createUser(ctx, nu)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u.ID, u.Username, u.Email, u.Role)
}

// Login authenticates by email and password. An unknown email and a wrong
// password produce the same ErrAuthenticationFailed. The issued token
// carries the account's current role, not the role at registration time.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrAuthenticationFailed
		}
		return "", fmt.Errorf("looking up account: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrAuthenticationFailed
	}

	return s.tokens.Issue(u.ID, u.Username, u.Email, u.Role)
}

// GetAllUsers returns the public view of every account in id order.
func (s *Service) GetAllUsers(ctx context.Context) ([]PublicUser, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	result := make([]PublicUser, 0, len(list))
	for i := range list {
		result = append(result, list[i].Public())
	}
	return result, nil
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (PublicUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PublicUser{}, err
	}
	return u.Public(), nil
}

// AddUser creates an account with the same duplicate semantics as
// Register but returns the public view instead of issuing a token.
func (s *Service) AddUser(ctx context.Context, nu NewUser) (PublicUser, error) {
	u, err := s.createUser(ctx, nu)
	if err != nil {
		return PublicUser{}, err
	}
	return u.Public(), nil
}

// UpdateUser overwrites username, email and names of an existing account.
// Password and role are untouched. Credentials held by another account
// fail with *DuplicateCredentialError; a missing id fails with ErrNotFound.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateRequest) (PublicUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PublicUser{}, err
	}

	other, err := s.repo.FindConflict(ctx, id, req.Username, req.Email)
	if err == nil {
		return PublicUser{}, duplicateFor(other, req.Username)
	}
	if !errors.Is(err, ErrNotFound) {
		return PublicUser{}, fmt.Errorf("checking credentials: %w", err)
	}

	u.Username = req.Username
	u.Email = req.Email
	u.FirstName = req.FirstName
	u.LastName = req.LastName

	// The store's unique constraints remain the authority; a concurrent
	// write that slipped past the pre-check surfaces here as the same
	// duplicate error.
	if err := s.repo.Update(ctx, u); err != nil {
		return PublicUser{}, err
	}

	return u.Public(), nil
}

// DeleteUser removes an account, reporting whether one existed.
func (s *Service) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// Authorize decides whether the authenticated identity may perform an
// operation. An empty requiredRole admits any valid identity; otherwise
// the role claim must equal requiredRole exactly.
func (s *Service) Authorize(ident auth.Identity, requiredRole string) bool {
	if requiredRole == "" {
		return true
	}
	return ident.Role == requiredRole
}

func (s *Service) createUser(ctx context.Context, nu NewUser) (*User, error) {
	existing, err := s.repo.FindByUsernameOrEmail(ctx, nu.Username, nu.Email)
	if err == nil {
		return nil, duplicateFor(existing, nu.Username)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking credentials: %w", err)
	}

	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: hash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Role:         DefaultRole,
	}

	// Insert translates a lost uniqueness race into the same
	// *DuplicateCredentialError the pre-check produces.
	return s.repo.Insert(ctx, u)
}

// duplicateFor names the field that collided with the existing account,
// preferring username.
func duplicateFor(existing *User, requestedUsername string) error {
	if existing.Username == requestedUsername {
		return &DuplicateCredentialError{Field: FieldUsername}
	}
	return &DuplicateCredentialError{Field: FieldEmail}
}
