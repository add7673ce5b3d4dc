package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/leads"
	"outbound-dialer/internal/metrics"
	"outbound-dialer/internal/notify"
	"outbound-dialer/internal/telephony"
	"outbound-dialer/pkg/logger"
)

var ErrNoRequestID = errors.New("bulk: no request id received from api")

type Dialer interface {
	PlaceCall(ctx context.Context, creds telephony.Credentials, to string, callData map[string]any) (telephony.PlaceCallResult, error)
}

// CredentialSource reads the current credentials and drops them after an auth or not-found answer.
type CredentialSource interface {
	Credentials() credentials.Credentials
	Invalidate(ctx context.Context, cause string)
}

type LeadWriter interface {
	MarkCalled(id, callID string) error
	MarkFailed(id string) error
}

type CallRecorder interface {
	Record(ctx context.Context, c calls.PlacedCall) (calls.PlacedCall, error)
}

type Notifier interface {
	Info(title, description string) notify.Notification
	Error(title, description string) notify.Notification
}

// Attempt is the resolved outcome of one call for one lead.
type Attempt struct {
	LeadID             string
	CallID             string
	Err                error
	CredentialsCleared bool
}

// Caller places one call for a lead and applies its effects: lead status,
// placed-calls log, credential invalidation and a notification.
type Caller struct {
	UserID  string
	Dialer  Dialer
	Creds   CredentialSource
	Leads   LeadWriter
	Calls   CallRecorder
	Notify  Notifier
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// Call never returns before the lead status has been written. origin labels metrics ("bulk", "single").
func (c *Caller) Call(ctx context.Context, lead leads.Lead, origin string) Attempt {
	log := c.logger().With("lead_id", lead.ID)
	a := Attempt{LeadID: lead.ID}

	creds := c.Creds.Credentials()
	if !creds.Configured() {
		a.Err = ErrCredentialsRequired
		c.fail(log, lead, origin, a.Err, "Credentials required", "Please configure your API credentials first.")
		return a
	}

	res, err := c.Dialer.PlaceCall(ctx, telephony.Credentials{OutboundID: creds.OutboundID, Token: creds.Token()}, lead.PhoneNumber, map[string]any{
		"firstName": lead.FirstName,
		"lastName":  lead.LastName,
		"email":     lead.Email,
	})
	if err == nil && res.ID == "" {
		err = ErrNoRequestID
	}
	if err != nil {
		a.Err = err
		if telephony.IsCredentialFailure(err) {
			c.Creds.Invalidate(ctx, "place call")
			a.CredentialsCleared = true
		}
		c.fail(log, lead, origin, err, "Call failed", "There was an error initiating the call: "+describe(err))
		return a
	}

	a.CallID = res.ID
	if err := c.Leads.MarkCalled(lead.ID, res.ID); err != nil {
		log.Debug("lead gone before call result", "err", err)
	}

	from := res.From
	if from == "" {
		from = "Unknown"
	}
	to := res.To
	if to == "" {
		to = lead.PhoneNumber
	}
	if _, err := c.Calls.Record(ctx, calls.PlacedCall{
		UserID:        c.UserID,
		OutboundID:    creds.OutboundID,
		RequestID:     res.ID,
		LeadID:        lead.ID,
		LeadName:      lead.FullName(),
		From:          from,
		To:            to,
		QueuePosition: res.QueuePosition,
	}); err != nil {
		log.Error("placed call not recorded", "call_id", res.ID, "err", err)
	}

	c.Metrics.RecordCall(origin, "placed")
	log.Info("call placed", "call_id", res.ID, "queue_position", res.QueuePosition)
	c.Notify.Info("Call initiated", fmt.Sprintf("Call to %s has been initiated. Request ID: %s", lead.FullName(), res.ID))
	return a
}

func (c *Caller) fail(log *slog.Logger, lead leads.Lead, origin string, err error, title, desc string) {
	if merr := c.Leads.MarkFailed(lead.ID); merr != nil {
		log.Debug("lead gone before call result", "err", merr)
	}
	c.Metrics.RecordCall(origin, "failed")
	log.Warn("call failed", "err", err)
	c.Notify.Error(title, desc)
}

func (c *Caller) logger() *slog.Logger {
	if c.Log == nil {
		return logger.Discard()
	}
	return c.Log
}

func describe(err error) string {
	var ae *telephony.APIError
	if errors.As(err, &ae) {
		return telephony.UserMessage(err)
	}
	return err.Error()
}
