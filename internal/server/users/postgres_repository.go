package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for a unique constraint violation.
const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the record with join_at and last_login_at both set to the
// creation time. A duplicate username surfaces as shared.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query :=
		`INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, current_timestamp, current_timestamp)
		 RETURNING join_at, last_login_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone).
		Scan(&user.JoinAt, &user.LastLoginAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, shared.ErrorConflict
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

// GetByUsername returns the full profile minus the password hash.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query :=
		`SELECT username, first_name, last_name, phone, join_at, last_login_at FROM users
		 WHERE username = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.FirstName, &user.LastName, &user.Phone, &user.JoinAt, &user.LastLoginAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetPasswordHash(ctx context.Context, username string) (string, error) {
	query :=
		`SELECT password FROM users
		 WHERE username = $1
		 `

	var hash string
	err := r.db.QueryRowContext(ctx, query, username).Scan(&hash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", shared.ErrorNotFound
		}
		return "", fmt.Errorf("error performing sql request: %v", err)
	}

	return hash, nil
}

// UpdateLoginTimestamp advances last_login_at to now. Zero affected rows
// means the username vanished between authentication and the update.
func (r *PostgresRepository) UpdateLoginTimestamp(ctx context.Context, username string) error {
	query :=
		`UPDATE users SET last_login_at = current_timestamp
		 WHERE username = $1
		 `

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if affected == 0 {
		return shared.ErrorNotFound
	}

	return nil
}

// All lists every user, ordered by last name for a deterministic listing.
func (r *PostgresRepository) All(ctx context.Context) ([]Summary, error) {
	query :=
		`SELECT username, first_name, last_name FROM users
		 ORDER BY last_name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	result := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Username, &s.FirstName, &s.LastName); err != nil {
			return nil, fmt.Errorf("error performing sql request: %v", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return result, nil
}
