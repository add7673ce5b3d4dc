package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events. Append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Service records credential changes. Callers treat failures as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.UserID == "" || e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) CredentialsSet(ctx context.Context, userID, outboundID, campaignID string) error {
	return s.Append(ctx, Event{UserID: userID, Type: EventCredentialsSet, OutboundID: outboundID, CampaignID: campaignID})
}

func (s *Service) CredentialsCleared(ctx context.Context, userID, outboundID string) error {
	return s.Append(ctx, Event{UserID: userID, Type: EventCredentialsCleared, OutboundID: outboundID})
}

// CredentialsAutoCleared records a clear triggered by an auth or not-found response.
func (s *Service) CredentialsAutoCleared(ctx context.Context, userID, outboundID, reason string) error {
	return s.Append(ctx, Event{UserID: userID, Type: EventCredentialsAutoCleared, OutboundID: outboundID, Reason: reason})
}
