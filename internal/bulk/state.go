package bulk

import (
	"errors"
	"time"
)

const (
	MinTimeframe     = 3 * time.Second
	MaxTimeframe     = 30 * time.Second
	DefaultTimeframe = 5 * time.Second
)

var (
	ErrCredentialsRequired = errors.New("bulk: credentials required")
	ErrInvalidTimeframe    = errors.New("bulk: timeframe must be between 3 and 30 seconds")
	ErrRunInProgress       = errors.New("bulk: a bulk call run is already in progress")
	ErrNoPendingLeads      = errors.New("bulk: no pending leads selected")
	ErrStopped             = errors.New("bulk: sequencer stopped")
)

// State is a snapshot of the current run.
//
// Invariant while InProgress: len(Queued) + CurrentIndex == TotalCalls.
// Queued includes the lead whose call is in flight. After a Cancel, InFlight keeps naming
// the cancelled run's call until its result arrives.
type State struct {
	InProgress   bool     `json:"inProgress"`
	Paused       bool     `json:"paused"`
	CurrentIndex int      `json:"currentIndex"`
	TotalCalls   int      `json:"totalCalls"`
	Timeframe    int      `json:"timeframe"`
	Queued       []string `json:"queued"`
	InFlight     string   `json:"inFlight,omitempty"`
}

type EventType string

const (
	EventStarted             EventType = "bulk_started"
	EventCallPlaced          EventType = "bulk_call_placed"
	EventCallFailed          EventType = "bulk_call_failed"
	EventPaused              EventType = "bulk_paused"
	EventResumed             EventType = "bulk_resumed"
	EventCancelled           EventType = "bulk_cancelled"
	EventCompleted           EventType = "bulk_completed"
	EventCredentialsRequired EventType = "credentials_required"
)

type Event struct {
	Type   EventType `json:"type"`
	State  State     `json:"state"`
	LeadID string    `json:"leadId,omitempty"`
	CallID string    `json:"callId,omitempty"`
	Error  string    `json:"error,omitempty"`
}
