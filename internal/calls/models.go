package calls

import (
	"errors"
	"time"
)

// Initial placeholders for a call that has just been queued.
const (
	StatusInProgress        = "In Progress"
	ConversationInCallQueue = "In Call Queue"
)

// PlacedCall is one successful outbound request, recorded for later lookup.
//
// Invariant: UserID is required on every row; reads are always user-scoped.
type PlacedCall struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"-" db:"user_id"`
	OutboundID         string    `json:"outboundId" db:"outbound_id"`
	RequestID          string    `json:"requestId" db:"request_id"`
	LeadID             string    `json:"leadId,omitempty" db:"lead_id"`
	LeadName           string    `json:"leadName" db:"lead_name"`
	From               string    `json:"from" db:"from_number"`
	To                 string    `json:"to" db:"to_number"`
	StartTime          time.Time `json:"startTime" db:"start_time"`
	Status             string    `json:"status" db:"status"`
	ConversationStatus string    `json:"conversationStatus" db:"conversation_status"`
	QueuePosition      int       `json:"queuePosition" db:"queue_position"`
}

var (
	ErrInvalidCall = errors.New("calls: invalid placed call")
	ErrNotFound    = errors.New("calls: not found")
)

func (c PlacedCall) validate() error {
	if c.UserID == "" || c.RequestID == "" {
		return ErrInvalidCall
	}
	return nil
}
