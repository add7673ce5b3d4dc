package audit

import (
	"context"
	"database/sql"

	"outbound-dialer/pkg/utils"
)

// PostgresRepo stores events in credential_audit. Rows are insert-only.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const table = `
CREATE TABLE IF NOT EXISTS credential_audit (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL,
	type        TEXT NOT NULL,
	outbound_id TEXT NOT NULL DEFAULT '',
	campaign_id TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
)
`
		if _, err := tx.ExecContext(ctx, table); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS credential_audit_user ON credential_audit (user_id, created_at)`)
		return err
	})
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO credential_audit (id, user_id, type, outbound_id, campaign_id, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.UserID, string(e.Type), e.OutboundID, e.CampaignID, e.Reason, e.CreatedAt)
	return err
}

// Events returns the user's events, oldest first.
func (r *PostgresRepo) Events(ctx context.Context, userID string) ([]Event, error) {
	const q = `
SELECT id, user_id, type, outbound_id, campaign_id, reason, created_at
FROM credential_audit
WHERE user_id = $1
ORDER BY created_at, id
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var typ string
		if err := rows.Scan(&e.ID, &e.UserID, &typ, &e.OutboundID, &e.CampaignID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
