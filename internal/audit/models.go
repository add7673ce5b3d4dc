package audit

import "time"

// Event is an append-only record of a credential change.
//
// Invariants:
// - Events are never updated or deleted.
// - user_id is required.
// - Bearer tokens are never recorded.
type Event struct {
	ID     string    `json:"id" db:"id"`
	UserID string    `json:"user_id" db:"user_id"`
	Type   EventType `json:"type" db:"type"`

	OutboundID string `json:"outbound_id,omitempty" db:"outbound_id"`
	CampaignID string `json:"campaign_id,omitempty" db:"campaign_id"`

	// Reason is a short machine-readable cause, e.g. the failing operation.
	Reason string `json:"reason,omitempty" db:"reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventCredentialsSet         EventType = "credentials_set"
	EventCredentialsCleared     EventType = "credentials_cleared"
	EventCredentialsAutoCleared EventType = "credentials_auto_cleared"
)
