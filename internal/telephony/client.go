package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.nlpearl.ai/v1"
	DefaultTimeout = 15 * time.Second

	// verifyNumber is dialed by VerifyCredentials.
	verifyNumber = "+1234567890"

	maxErrorBody = 4 << 10
)

// Client talks to the NLPearl REST API. Safe for concurrent use.
//
// Rules:
// - Every request is bound by Timeout; expiry surfaces ErrTimeout and is never retried.
// - Failures are always *APIError.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    hc,
	}
}

// PlaceCall queues one outbound call for creds.OutboundID.
func (c *Client) PlaceCall(ctx context.Context, creds Credentials, to string, callData map[string]any) (PlaceCallResult, error) {
	var out PlaceCallResult
	body := PlaceCallRequest{To: to, CallData: callData}
	err := c.do(ctx, "place call", http.MethodPost, outboundPath(creds.OutboundID, "Call"), creds.Token, body, &out)
	return out, err
}

// ListCalls returns one page of call history.
func (c *Client) ListCalls(ctx context.Context, creds Credentials, f CallsFilter) (CallsPage, error) {
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Statuses == nil {
		f.Statuses = []int{}
	}
	var out CallsPage
	err := c.do(ctx, "list calls", http.MethodPost, outboundPath(creds.OutboundID, "Calls"), creds.Token, f, &out)
	return out, err
}

func (c *Client) GetCallDetail(ctx context.Context, token, callID string) (CallDetails, error) {
	var out CallDetails
	err := c.do(ctx, "get call", http.MethodGet, "/Call/"+url.PathEscape(callID), token, nil, &out)
	return out, err
}

// GetCampaignStatus returns the raw status. Use CampaignStatus.Active to interpret it.
func (c *Client) GetCampaignStatus(ctx context.Context, creds Credentials) (CampaignStatus, error) {
	var out CampaignStatus
	err := c.do(ctx, "get campaign status", http.MethodGet, outboundPath(creds.OutboundID, ""), creds.Token, nil, &out)
	return out, err
}

func (c *Client) SetCampaignActive(ctx context.Context, creds Credentials, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.do(ctx, "set campaign active", http.MethodPost, outboundPath(creds.OutboundID, "Active"), creds.Token, body, nil)
}

func (c *Client) SetInboundActive(ctx context.Context, token, inboundID string, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.do(ctx, "set inbound active", http.MethodPost, "/Inbound/"+url.PathEscape(inboundID)+"/Active", token, body, nil)
}

// GetAnalytics returns aggregates for [from, to].
func (c *Client) GetAnalytics(ctx context.Context, creds Credentials, from, to time.Time) (AnalyticsSnapshot, error) {
	body := map[string]string{
		"from": from.UTC().Format(time.RFC3339),
		"to":   to.UTC().Format(time.RFC3339),
	}
	var out AnalyticsSnapshot
	err := c.do(ctx, "get analytics", http.MethodPost, outboundPath(creds.OutboundID, "Analytics"), creds.Token, body, &out)
	return out, err
}

// VerifyCredentials places a test call. Only an auth rejection, a timeout or a transport
// failure count as invalid; any other API answer proves the token and outbound id are usable.
func (c *Client) VerifyCredentials(ctx context.Context, creds Credentials) error {
	_, err := c.PlaceCall(ctx, creds, verifyNumber, map[string]any{
		"firstName": "Test",
		"lastName":  "User",
		"email":     "test@example.com",
	})
	if err == nil || errors.Is(err, ErrAuth) || errors.Is(err, ErrTimeout) {
		return err
	}
	if StatusOf(err) > 0 {
		return nil
	}
	return err
}

func outboundPath(outboundID, suffix string) string {
	p := "/Outbound/" + url.PathEscape(outboundID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &APIError{Op: op, Kind: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Op: op, Kind: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Kind: transportKind(ctx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Op: op, Status: resp.StatusCode, Kind: classify(resp.StatusCode), Body: string(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if kind := transportKind(ctx, err); errors.Is(kind, ErrTimeout) {
			return &APIError{Op: op, Status: resp.StatusCode, Kind: kind}
		}
		return &APIError{Op: op, Status: resp.StatusCode, Kind: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

// transportKind maps a deadline expiry to ErrTimeout and leaves everything else as is.
func transportKind(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return err
}
