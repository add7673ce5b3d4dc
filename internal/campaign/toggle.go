package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/notify"
	"outbound-dialer/internal/telephony"
	"outbound-dialer/pkg/logger"
	"outbound-dialer/pkg/utils"
)

var (
	ErrToggleUnavailable   = errors.New("campaign: toggle unavailable")
	ErrCredentialsRequired = errors.New("campaign: credentials required")
)

type StatusClient interface {
	GetCampaignStatus(ctx context.Context, creds telephony.Credentials) (telephony.CampaignStatus, error)
	SetCampaignActive(ctx context.Context, creds telephony.Credentials, active bool) error
}

type CredentialReader interface {
	Credentials() credentials.Credentials
}

type Notifier interface {
	Info(title, description string) notify.Notification
	Error(title, description string) notify.Notification
}

// View is what a client needs to render the switch.
type View struct {
	Active    *bool `json:"isCampaignOn"`
	Checking  bool  `json:"isChecking"`
	Toggling  bool  `json:"isToggling"`
	Available bool  `json:"canToggle"`
}

// Toggle tracks one campaign's active flag.
//
// Rules:
// - Active is nil until a status check returns 1 or 2, and after any failed check.
// - Toggle is refused while a check or toggle is running, or while Active is nil.
type Toggle struct {
	client StatusClient
	creds  CredentialReader
	notify Notifier
	log    *slog.Logger

	mu       sync.Mutex
	active   *bool
	checking bool
	toggling bool
	// epoch changes on Reset; writes from a check or toggle begun earlier are dropped.
	epoch uint64
}

func NewToggle(client StatusClient, creds CredentialReader, n Notifier, log *slog.Logger) *Toggle {
	if log == nil {
		log = logger.Discard()
	}
	return &Toggle{client: client, creds: creds, notify: n, log: log.With("component", "campaign_toggle")}
}

func (t *Toggle) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return View{
		Active:    copyBool(t.active),
		Checking:  t.checking,
		Toggling:  t.toggling,
		Available: !t.checking && !t.toggling && t.active != nil,
	}
}

// Reset forgets the known status, e.g. after the credentials changed.
func (t *Toggle) Reset() {
	t.mu.Lock()
	t.active = nil
	t.epoch++
	t.mu.Unlock()
}

// RefreshStatus reads the campaign status. An unknown status yields nil, ErrUnknownStatus
// and exactly one notification.
func (t *Toggle) RefreshStatus(ctx context.Context) (*bool, error) {
	t.mu.Lock()
	if t.checking || t.toggling {
		cur := copyBool(t.active)
		t.mu.Unlock()
		return cur, ErrToggleUnavailable
	}
	t.checking = true
	epoch := t.epoch
	t.mu.Unlock()

	active, err := t.fetch(ctx)

	t.mu.Lock()
	t.checking = false
	if t.epoch == epoch {
		t.active = copyBool(active)
	}
	t.mu.Unlock()
	return active, err
}

func (t *Toggle) fetch(ctx context.Context) (*bool, error) {
	creds := t.creds.Credentials()
	if !creds.Configured() {
		return nil, ErrCredentialsRequired
	}

	st, err := t.client.GetCampaignStatus(ctx, telephony.Credentials{OutboundID: creds.OutboundID, Token: creds.Token()})
	if err != nil {
		t.log.Warn("campaign status check failed", "outbound_id", creds.OutboundID, "err", err)
		t.notify.Error("Status check failed", telephony.UserMessage(err))
		return nil, err
	}

	active, err := st.Active()
	if err != nil {
		t.log.Warn("unknown campaign status", "outbound_id", creds.OutboundID, "status", st.Status)
		t.notify.Error("Unknown status", fmt.Sprintf("Received status=%d. Expected 1 (ON) or 2 (OFF).", st.Status))
		return nil, fmt.Errorf("%w: status=%d", err, st.Status)
	}
	return &active, nil
}

// Toggle flips the flag optimistically and reverts it when the API call fails.
// It returns the flag as it stands afterwards.
func (t *Toggle) Toggle(ctx context.Context) (bool, error) {
	creds := t.creds.Credentials()
	if !creds.Configured() {
		return false, ErrCredentialsRequired
	}

	t.mu.Lock()
	if t.checking || t.toggling || t.active == nil {
		t.mu.Unlock()
		return false, ErrToggleUnavailable
	}
	prev := *t.active
	next := !prev
	t.toggling = true
	epoch := t.epoch
	t.mu.Unlock()

	err := utils.Optimistic(ctx,
		func() { t.set(epoch, next) },
		func(ctx context.Context) error {
			return t.client.SetCampaignActive(ctx, telephony.Credentials{OutboundID: creds.OutboundID, Token: creds.Token()}, next)
		},
		func() { t.set(epoch, prev) },
	)

	t.mu.Lock()
	t.toggling = false
	stale := t.epoch != epoch
	t.mu.Unlock()

	if stale {
		t.log.Info("campaign toggle finished after credentials changed", "outbound_id", creds.OutboundID, "err", err)
		if err != nil {
			return prev, err
		}
		return next, nil
	}

	if err != nil {
		t.log.Warn("campaign toggle failed", "outbound_id", creds.OutboundID, "err", err)
		t.notify.Error("Toggle failed", telephony.UserMessage(err))
		return prev, err
	}

	title, word := "Campaign disabled", "inactive"
	if next {
		title, word = "Campaign enabled", "active"
	}
	t.notify.Info(title, fmt.Sprintf("Outbound %s is now %s.", creds.OutboundID, word))
	return next, nil
}

// set writes v unless a Reset happened since epoch.
func (t *Toggle) set(epoch uint64, v bool) {
	t.mu.Lock()
	if t.epoch == epoch {
		t.active = &v
	}
	t.mu.Unlock()
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
