package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"usermgmt/internal/dbx"
)

// Unique constraint names from the users migration, used to map a
// write-time violation back to the colliding field.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = "id, username, email, password_hash, first_name, last_name, role, created_at, updated_at"

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	// When username and email match different accounts, the username
	// match is reported first.
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE username = $1 OR email = $2
		 ORDER BY (username = $1) DESC
		 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, username, email))
}

func (r *PostgresRepository) FindConflict(ctx context.Context, excludeID int64, username, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE id <> $1 AND (username = $2 OR email = $3)
		 ORDER BY (username = $2) DESC
		 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, excludeID, username, email))
}

func (r *PostgresRepository) Insert(ctx context.Context, u *User) (*User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, first_name, last_name, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if dup := duplicateFieldError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	query :=
		`UPDATE users
		 SET username = $1, email = $2, first_name = $3, last_name = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if dup := duplicateFieldError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected > 0, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// duplicateFieldError translates a Postgres unique violation into the
// field-scoped duplicate error, or returns nil for any other error.
func duplicateFieldError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case emailConstraint:
		return &DuplicateCredentialError{Field: FieldEmail}
	default:
		// Username constraint, or an unknown one. Username is the field
		// reported first when the origin cannot be told apart.
		return &DuplicateCredentialError{Field: FieldUsername}
	}
}
