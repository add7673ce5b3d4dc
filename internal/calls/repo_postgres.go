package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"outbound-dialer/pkg/utils"
)

// PostgresRepo stores the log in the placed_calls table. Rows are never updated.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// EnsureSchema creates the table and index when missing.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const table = `
CREATE TABLE IF NOT EXISTS placed_calls (
	id                  UUID PRIMARY KEY,
	user_id             TEXT NOT NULL,
	outbound_id         TEXT NOT NULL,
	request_id          TEXT NOT NULL,
	lead_id             TEXT NOT NULL DEFAULT '',
	lead_name           TEXT NOT NULL DEFAULT '',
	from_number         TEXT NOT NULL DEFAULT '',
	to_number           TEXT NOT NULL,
	start_time          TIMESTAMPTZ NOT NULL,
	status              TEXT NOT NULL,
	conversation_status TEXT NOT NULL,
	queue_position      INT NOT NULL DEFAULT 0
)
`
		if _, err := tx.ExecContext(ctx, table); err != nil {
			return err
		}
		const idx = `CREATE INDEX IF NOT EXISTS placed_calls_user_start ON placed_calls (user_id, start_time DESC)`
		_, err := tx.ExecContext(ctx, idx)
		return err
	})
}

func (r *PostgresRepo) Append(ctx context.Context, c PlacedCall) error {
	if err := c.validate(); err != nil {
		return err
	}
	const q = `
INSERT INTO placed_calls (id, user_id, outbound_id, request_id, lead_id, lead_name, from_number, to_number, start_time, status, conversation_status, queue_position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.UserID,
		c.OutboundID,
		c.RequestID,
		c.LeadID,
		c.LeadName,
		c.From,
		c.To,
		c.StartTime,
		c.Status,
		c.ConversationStatus,
		c.QueuePosition,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, userID string, from, to time.Time) ([]PlacedCall, error) {
	const q = `
SELECT id, user_id, outbound_id, request_id, lead_id, lead_name, from_number, to_number, start_time, status, conversation_status, queue_position
FROM placed_calls
WHERE user_id = $1
  AND ($2::timestamptz IS NULL OR start_time >= $2)
  AND ($3::timestamptz IS NULL OR start_time < $3)
ORDER BY start_time DESC
`
	rows, err := r.db.QueryContext(ctx, q, userID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PlacedCall, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, userID, requestID string) (PlacedCall, error) {
	const q = `
SELECT id, user_id, outbound_id, request_id, lead_id, lead_name, from_number, to_number, start_time, status, conversation_status, queue_position
FROM placed_calls
WHERE user_id = $1 AND request_id = $2
ORDER BY start_time DESC
LIMIT 1
`
	c, err := scanCall(r.db.QueryRowContext(ctx, q, userID, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return PlacedCall{}, ErrNotFound
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(s scanner) (PlacedCall, error) {
	var c PlacedCall
	err := s.Scan(
		&c.ID,
		&c.UserID,
		&c.OutboundID,
		&c.RequestID,
		&c.LeadID,
		&c.LeadName,
		&c.From,
		&c.To,
		&c.StartTime,
		&c.Status,
		&c.ConversationStatus,
		&c.QueuePosition,
	)
	return c, err
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
