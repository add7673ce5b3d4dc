package calls

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the append-only placed-calls log.
type Repository interface {
	Append(ctx context.Context, c PlacedCall) error
	// List returns calls with StartTime in [from, to), newest first. Zero bounds are open.
	List(ctx context.Context, userID string, from, to time.Time) ([]PlacedCall, error)
	Get(ctx context.Context, userID, requestID string) (PlacedCall, error)
}

// Log fills defaults and appends to a Repository.
type Log struct {
	repo  Repository
	clock func() time.Time
}

func NewLog(repo Repository) *Log { return &Log{repo: repo, clock: time.Now} }

// Record appends c with an id, start time and the initial status placeholders when absent.
func (l *Log) Record(ctx context.Context, c PlacedCall) (PlacedCall, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.StartTime.IsZero() {
		c.StartTime = l.clock().UTC()
	}
	if c.Status == "" {
		c.Status = StatusInProgress
	}
	if c.ConversationStatus == "" {
		c.ConversationStatus = ConversationInCallQueue
	}
	if err := c.validate(); err != nil {
		return PlacedCall{}, err
	}
	return c, l.repo.Append(ctx, c)
}

func (l *Log) List(ctx context.Context, userID string, from, to time.Time) ([]PlacedCall, error) {
	return l.repo.List(ctx, userID, from, to)
}

func (l *Log) Get(ctx context.Context, userID, requestID string) (PlacedCall, error) {
	return l.repo.Get(ctx, userID, requestID)
}
