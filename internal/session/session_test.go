package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outbound-dialer/internal/audit"
	"outbound-dialer/internal/bulk"
	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/leads"
	"outbound-dialer/internal/telephony"
)

type stubTelephony struct {
	placeErr error
	status   int
}

func (s *stubTelephony) PlaceCall(_ context.Context, _ telephony.Credentials, to string, _ map[string]any) (telephony.PlaceCallResult, error) {
	if s.placeErr != nil {
		return telephony.PlaceCallResult{}, s.placeErr
	}
	return telephony.PlaceCallResult{ID: "req-" + to, From: "+15550000000", To: to, QueuePosition: 1}, nil
}

func (s *stubTelephony) GetCampaignStatus(context.Context, telephony.Credentials) (telephony.CampaignStatus, error) {
	return telephony.CampaignStatus{Status: s.status}, nil
}

func (s *stubTelephony) SetCampaignActive(context.Context, telephony.Credentials, bool) error {
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) Publish(_ string, eventType string, _ any) {
	r.mu.Lock()
	r.events = append(r.events, eventType)
	r.mu.Unlock()
}

func (r *recordingSink) has(eventType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == eventType {
			return true
		}
	}
	return false
}

type fixture struct {
	reg   *Registry
	tel   *stubTelephony
	sink  *recordingSink
	audit *audit.MemoryRepo
	calls *calls.MemoryRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	f := &fixture{
		tel:   &stubTelephony{status: 1},
		sink:  &recordingSink{},
		audit: audit.NewMemoryRepo(),
		calls: calls.NewMemoryRepo(),
	}
	f.reg = NewRegistry(ctx, Deps{
		KV:        credentials.NewMemoryKV(),
		Telephony: f.tel,
		Calls:     calls.NewLog(f.calls),
		Audit:     audit.NewService(f.audit),
		Events:    f.sink,
	})
	t.Cleanup(func() {
		cancel()
		f.reg.Wait()
	})
	return f
}

func TestRegistryReusesSessions(t *testing.T) {
	f := newFixture(t)
	a := f.reg.Get("u1")
	assert.Same(t, a, f.reg.Get("u1"))
	assert.NotSame(t, a, f.reg.Get("u2"))
	assert.Equal(t, 2, f.reg.Len())
}

func TestSaveAndClearCredentialsAreAudited(t *testing.T) {
	f := newFixture(t)
	s := f.reg.Get("u1")
	ctx := context.Background()

	s.SaveCredentials(ctx, credentials.Credentials{OutboundID: "ob-1", BearerToken: "Bearer tok", CampaignID: "c-1"})
	assert.Equal(t, telephony.Credentials{OutboundID: "ob-1", Token: "tok"}, s.TelephonyCredentials())

	s.ClearCredentials(ctx)
	assert.False(t, s.Credentials().Configured())

	events := f.audit.Events("u1")
	require.Len(t, events, 2)
	assert.Equal(t, audit.EventCredentialsSet, events[0].Type)
	assert.Equal(t, "c-1", events[0].CampaignID)
	assert.Equal(t, audit.EventCredentialsCleared, events[1].Type)
	assert.Equal(t, "ob-1", events[1].OutboundID)
}

func TestSaveCredentialsForgetsCampaignStatus(t *testing.T) {
	f := newFixture(t)
	s := f.reg.Get("u1")
	ctx := context.Background()
	s.SaveCredentials(ctx, credentials.Credentials{OutboundID: "ob-1", BearerToken: "tok"})

	active, err := s.Toggle.RefreshStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)

	s.SaveCredentials(ctx, credentials.Credentials{OutboundID: "ob-2", BearerToken: "tok"})
	assert.Nil(t, s.Toggle.View().Active)
}

func TestBulkRunRejectedCredentialsAreCleared(t *testing.T) {
	f := newFixture(t)
	f.tel.placeErr = &telephony.APIError{Op: "place call", Status: 401, Kind: telephony.ErrAuth}
	s := f.reg.Get("u1")
	ctx := context.Background()
	s.SaveCredentials(ctx, credentials.Credentials{OutboundID: "ob-1", BearerToken: "tok"})

	lead, err := s.Leads.Add(leads.Lead{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "+15551230001"})
	require.NoError(t, err)

	_, err = s.Sequencer.Start(ctx, []leads.Lead{lead}, bulk.MinTimeframe)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.sink.has(string(bulk.EventCompleted)) }, 2*time.Second, 10*time.Millisecond)

	assert.False(t, s.Credentials().Configured())
	got, err := s.Leads.Get(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, leads.StatusFailed, got.Status)
	assert.True(t, f.sink.has(string(bulk.EventCredentialsRequired)))
	assert.True(t, f.sink.has("notification_published"))

	events := f.audit.Events("u1")
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, audit.EventCredentialsAutoCleared, last.Type)
	assert.Equal(t, "ob-1", last.OutboundID)
}

func TestSingleCallRecordsPlacedCall(t *testing.T) {
	f := newFixture(t)
	s := f.reg.Get("u1")
	ctx := context.Background()
	s.SaveCredentials(ctx, credentials.Credentials{OutboundID: "ob-1", BearerToken: "tok"})

	lead, err := s.Leads.Add(leads.Lead{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "+15551230001"})
	require.NoError(t, err)

	a := s.Caller.Call(ctx, lead, "single")
	require.NoError(t, a.Err)
	assert.Equal(t, "req-+15551230001", a.CallID)

	placed, err := f.calls.Get(ctx, "u1", a.CallID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", placed.LeadName)
	assert.Equal(t, "ob-1", placed.OutboundID)
}
