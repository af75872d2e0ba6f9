// Package auth issues and validates the bearer tokens that gate access to
// the API, and hashes the passwords behind them.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSigningConfig is returned at construction time when the
	// signing secret, issuer or audience is absent. Fatal at startup.
	ErrMissingSigningConfig = errors.New("missing signing configuration")

	// ErrInvalidToken covers every validation failure: bad signature,
	// wrong issuer or audience, expired, malformed. Callers get no
	// detail about which check failed.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated caller derived from a valid token.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	Role     string
}

// Claims embedded in issued tokens. The subject carries the user id.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 JWTs with a fixed issuer,
// audience and lifetime. Both operations are pure computations; a single
// manager is safe for concurrent use.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewTokenManager(secret, issuer, audience string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" || issuer == "" || audience == "" {
		return nil, ErrMissingSigningConfig
	}
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// Issue builds a signed token for the given account claims, expiring
// ttl from now.
func (m *TokenManager) Issue(userID int64, username, email, role string) (string, error) {
	now := time.Now()

	claims := Claims{
		Username: username,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate checks signature, issuer, audience and expiry, and fails
// closed on any mismatch. On success it returns the embedded identity.
func (m *TokenManager) Validate(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
