package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for a foreign key violation; raised when a message
// names a recipient that does not exist.
const foreignKeyViolationCode = "23503"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *Message) (*Message, error) {
	query :=
		`INSERT INTO messages (id, from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4, current_timestamp)
		 RETURNING sent_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.FromUsername, msg.ToUsername, msg.Body).
		Scan(&msg.SentAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return msg, nil
}

// Get fetches the message joined with both participant profiles. It does not
// enforce access; the caller checks the resolved identity against the
// participants of the returned record.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Detail, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users f ON m.from_username = f.username
		 JOIN users t ON m.to_username = t.username
		 WHERE m.id = $1
		 `

	d := &Detail{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return d, nil
}

// MarkRead sets read_at only while it is still unset: a second call leaves
// the original timestamp in place and returns it. The unread->read
// transition therefore happens at most once per message.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) (*ReadReceipt, error) {
	query :=
		`UPDATE messages SET read_at = COALESCE(read_at, current_timestamp)
		 WHERE id = $1
		 RETURNING id, read_at
		 `

	receipt := &ReadReceipt{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&receipt.ID, &receipt.ReadAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return receipt, nil
}

// From lists messages sent by username, each row carrying the recipient's
// profile, ordered by sent_at ascending.
func (r *PostgresRepository) From(ctx context.Context, username string) ([]Sent, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON m.to_username = u.username
		 WHERE m.from_username = $1
		 ORDER BY m.sent_at
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	result := make([]Sent, 0)
	for rows.Next() {
		var m Sent
		err := rows.Scan(&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone)
		if err != nil {
			return nil, fmt.Errorf("error performing sql request: %v", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return result, nil
}

// To lists messages received by username, each row carrying the sender's
// profile, ordered by sent_at ascending.
func (r *PostgresRepository) To(ctx context.Context, username string) ([]Received, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON m.from_username = u.username
		 WHERE m.to_username = $1
		 ORDER BY m.sent_at
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	result := make([]Received, 0)
	for rows.Next() {
		var m Received
		err := rows.Scan(&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone)
		if err != nil {
			return nil, fmt.Errorf("error performing sql request: %v", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return result, nil
}
