package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"outbound-dialer/internal/audit"
	"outbound-dialer/internal/bulk"
	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/campaign"
	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/leads"
	"outbound-dialer/internal/metrics"
	"outbound-dialer/internal/notify"
	"outbound-dialer/internal/telephony"
	"outbound-dialer/pkg/logger"
)

// EventSink receives every sequencer and notification event of a session.
type EventSink interface {
	Publish(userID, eventType string, data any)
}

// Telephony is the subset of the telephony client a session drives.
type Telephony interface {
	bulk.Dialer
	campaign.StatusClient
}

type Deps struct {
	KV               credentials.KV
	Telephony        Telephony
	Calls            *calls.Log
	Audit            *audit.Service
	Metrics          *metrics.Metrics
	Events           EventSink
	Clock            bulk.Clock
	NotifyLimit      int
	DefaultTimeframe time.Duration
	Log              *slog.Logger
}

// Session is one user's dashboard state: credentials, leads, notifications,
// the bulk sequencer and the campaign toggle.
type Session struct {
	UserID string

	Creds     *credentials.Store
	Leads     *leads.Repository
	Notify    *notify.Service
	Caller    *bulk.Caller
	Sequencer *bulk.Sequencer
	Toggle    *campaign.Toggle

	audit   *audit.Service
	metrics *metrics.Metrics
	log     *slog.Logger
	mu      sync.Mutex
}

func newSession(userID string, d Deps) *Session {
	log := d.Log.With("user_id", userID)
	s := &Session{
		UserID:  userID,
		Creds:   credentials.NewStore(d.KV, userID, d.Log),
		Leads:   leads.NewRepository(),
		Notify:  notify.New(d.NotifyLimit),
		audit:   d.Audit,
		metrics: d.Metrics,
		log:     log,
	}
	s.Caller = &bulk.Caller{
		UserID:  userID,
		Dialer:  d.Telephony,
		Creds:   s,
		Leads:   s.Leads,
		Calls:   d.Calls,
		Notify:  s.Notify,
		Metrics: d.Metrics,
		Log:     log.With("component", "caller"),
	}
	s.Sequencer = bulk.NewSequencer(s.Caller, d.Clock, d.DefaultTimeframe)
	s.Toggle = campaign.NewToggle(d.Telephony, s, s.Notify, log)

	s.Notify.Subscribe(func(e notify.Event) {
		if e.Type == notify.EventPublished {
			d.Metrics.RecordNotification(string(e.Notification.Variant))
		}
		if d.Events != nil {
			d.Events.Publish(userID, string(e.Type), e.Notification)
		}
	})
	if d.Events != nil {
		s.Sequencer.Subscribe(func(e bulk.Event) {
			d.Events.Publish(userID, string(e.Type), e)
		})
	}
	return s
}

// Credentials reads the stored triple.
func (s *Session) Credentials() credentials.Credentials { return s.Creds.Credentials() }

// TelephonyCredentials is the normalized pair sent to the telephony API.
func (s *Session) TelephonyCredentials() telephony.Credentials {
	c := s.Creds.Credentials()
	return telephony.Credentials{OutboundID: c.OutboundID, Token: c.Token()}
}

// SaveCredentials persists c and forgets the last known campaign status.
func (s *Session) SaveCredentials(ctx context.Context, c credentials.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Creds.Save(c)
	s.Toggle.Reset()
	if err := s.audit.CredentialsSet(ctx, s.UserID, c.OutboundID, c.CampaignID); err != nil {
		s.log.Warn("audit credentials set", "err", err)
	}
	s.log.Info("credentials saved", "outbound_id", c.OutboundID)
}

// ClearCredentials removes the stored triple on user request.
func (s *Session) ClearCredentials(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outbound := s.Creds.Credentials().OutboundID
	s.Creds.Clear()
	s.Toggle.Reset()
	if err := s.audit.CredentialsCleared(ctx, s.UserID, outbound); err != nil {
		s.log.Warn("audit credentials cleared", "err", err)
	}
	s.log.Info("credentials cleared", "outbound_id", outbound)
}

// Invalidate drops credentials after the telephony API rejected them.
func (s *Session) Invalidate(ctx context.Context, cause string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outbound := s.Creds.Credentials().OutboundID
	s.Creds.Clear()
	s.Toggle.Reset()
	s.metrics.RecordCredentialClear(cause)
	if err := s.audit.CredentialsAutoCleared(ctx, s.UserID, outbound, cause); err != nil {
		s.log.Warn("audit credentials auto-cleared", "err", err)
	}
	s.log.Warn("credentials cleared after rejection", "outbound_id", outbound, "cause", cause)
}

// Registry creates sessions on first use and runs their sequencers until the root context ends.
type Registry struct {
	deps Deps
	root context.Context

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

func NewRegistry(root context.Context, d Deps) *Registry {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.KV == nil {
		d.KV = credentials.NewMemoryKV()
	}
	if d.Audit == nil {
		d.Audit = audit.NewService(audit.NewMemoryRepo())
	}
	if d.Calls == nil {
		d.Calls = calls.NewLog(calls.NewMemoryRepo())
	}
	return &Registry{deps: d, root: root, sessions: map[string]*Session{}}
}

func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := newSession(userID, r.deps)
	r.sessions[userID] = s
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		s.Sequencer.Run(r.root)
	}()
	r.deps.Log.Debug("session created", "user_id", userID)
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Wait blocks until every sequencer has stopped. Cancel the root context first.
func (r *Registry) Wait() { r.wg.Wait() }
