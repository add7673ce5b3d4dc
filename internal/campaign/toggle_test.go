package campaign

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/notify"
	"outbound-dialer/internal/telephony"
)

type fakeStatusClient struct {
	mu      sync.Mutex
	status  int
	getErr  error
	setErr  error
	sets    []bool
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeStatusClient) GetCampaignStatus(context.Context, telephony.Credentials) (telephony.CampaignStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return telephony.CampaignStatus{Status: f.status}, f.getErr
}

func (f *fakeStatusClient) SetCampaignActive(_ context.Context, _ telephony.Credentials, active bool) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, active)
	return f.setErr
}

type staticCreds credentials.Credentials

func (c staticCreds) Credentials() credentials.Credentials { return credentials.Credentials(c) }

var configured = staticCreds{OutboundID: "out-1", BearerToken: "tok"}

func TestRefreshStatus_Maps(t *testing.T) {
	for status, want := range map[int]bool{1: true, 2: false} {
		tg := NewToggle(&fakeStatusClient{status: status}, configured, notify.New(3), nil)
		got, err := tg.RefreshStatus(context.Background())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
		assert.True(t, tg.View().Available)
	}
}

// status 5: unknown, toggle disabled, one notification per fetch.
func TestRefreshStatus_Unknown(t *testing.T) {
	n := notify.New(10)
	var unknown int
	n.Subscribe(func(e notify.Event) {
		if e.Notification.Title == "Unknown status" {
			unknown++
		}
	})
	client := &fakeStatusClient{status: 5}
	tg := NewToggle(client, configured, n, nil)

	got, err := tg.RefreshStatus(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, telephony.ErrUnknownStatus)
	assert.Equal(t, 1, unknown)

	v := tg.View()
	assert.Nil(t, v.Active)
	assert.False(t, v.Available)

	_, err = tg.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrToggleUnavailable)
	assert.Empty(t, client.sets)

	_, _ = tg.RefreshStatus(context.Background())
	assert.Equal(t, 2, unknown)
}

func TestToggle_SuccessAndRevert(t *testing.T) {
	client := &fakeStatusClient{status: 1}
	n := notify.New(3)
	tg := NewToggle(client, configured, n, nil)
	_, err := tg.RefreshStatus(context.Background())
	require.NoError(t, err)

	now, err := tg.Toggle(context.Background())
	require.NoError(t, err)
	assert.False(t, now)
	assert.Equal(t, "Campaign disabled", n.List()[0].Title)

	client.setErr = &telephony.APIError{Op: "set campaign active", Status: http.StatusInternalServerError, Kind: telephony.ErrServer}
	now, err = tg.Toggle(context.Background())
	assert.ErrorIs(t, err, telephony.ErrServer)
	assert.False(t, now)
	assert.False(t, *tg.View().Active)
	assert.Equal(t, "Toggle failed", n.List()[0].Title)
	assert.Equal(t, []bool{false, true}, client.sets)
}

func TestToggle_OptimisticAndExclusive(t *testing.T) {
	client := &fakeStatusClient{status: 2, block: make(chan struct{}), entered: make(chan struct{})}
	tg := NewToggle(client, configured, notify.New(3), nil)
	_, err := tg.RefreshStatus(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := tg.Toggle(context.Background())
		done <- err
	}()
	<-client.entered

	v := tg.View()
	require.NotNil(t, v.Active)
	assert.True(t, *v.Active)
	assert.True(t, v.Toggling)
	assert.False(t, v.Available)

	_, err = tg.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrToggleUnavailable)
	_, err = tg.RefreshStatus(context.Background())
	assert.ErrorIs(t, err, ErrToggleUnavailable)

	close(client.block)
	require.NoError(t, <-done)
	assert.True(t, *tg.View().Active)
}

func TestToggle_RequiresCredentials(t *testing.T) {
	tg := NewToggle(&fakeStatusClient{status: 1}, staticCreds{}, notify.New(3), nil)
	_, err := tg.RefreshStatus(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	_, err = tg.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsRequired)
}

func TestToggle_ResetDuringCallDropsResult(t *testing.T) {
	for _, setErr := range []error{
		nil,
		&telephony.APIError{Op: "set campaign active", Status: http.StatusInternalServerError, Kind: telephony.ErrServer},
	} {
		client := &fakeStatusClient{status: 1, setErr: setErr, block: make(chan struct{}), entered: make(chan struct{})}
		n := notify.New(3)
		tg := NewToggle(client, configured, n, nil)
		_, err := tg.RefreshStatus(context.Background())
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := tg.Toggle(context.Background())
			done <- err
		}()
		<-client.entered

		tg.Reset()
		close(client.block)
		err = <-done
		if setErr != nil {
			assert.ErrorIs(t, err, telephony.ErrServer)
		} else {
			assert.NoError(t, err)
		}

		v := tg.View()
		assert.Nil(t, v.Active)
		assert.False(t, v.Available)
		assert.False(t, v.Toggling)
		assert.Empty(t, n.List())

		_, err = tg.Toggle(context.Background())
		assert.ErrorIs(t, err, ErrToggleUnavailable)
	}
}

func TestToggle_ResetClearsAfterRefresh(t *testing.T) {
	tg := NewToggle(&fakeStatusClient{status: 1}, configured, notify.New(3), nil)
	_, err := tg.RefreshStatus(context.Background())
	require.NoError(t, err)
	tg.Reset()
	assert.Nil(t, tg.View().Active)

	got, err := tg.RefreshStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, *got)
	assert.True(t, *tg.View().Active)
}
