package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://whitelabel-server.onrender.com"
	DefaultTimeout = 10 * time.Second
)

var (
	ErrTimeout     = errors.New("directory: request timed out")
	ErrUnavailable = errors.New("directory: request failed")
)

// CampaignData is one campaign the backend stores for a user.
type CampaignData struct {
	ID           string    `json:"id"`
	CampaignName string    `json:"campaignName"`
	OutboundID   string    `json:"outboundId"`
	BearerToken  string    `json:"bearerToken"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Client reads the campaign directory.
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
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout, http: hc}
}

// ListByEmail returns the user's campaigns. A 404 means none and is not an error.
func (c *Client) ListByEmail(ctx context.Context, email string) ([]CampaignData, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + "/users/email/" + url.PathEscape(email) + "/userdata"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return []CampaignData{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out []CampaignData
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if out == nil {
		out = []CampaignData{}
	}
	return out, nil
}

// Select prefers the campaign with savedID, falling back to the first one.
func Select(list []CampaignData, savedID string) (CampaignData, bool) {
	if len(list) == 0 {
		return CampaignData{}, false
	}
	if savedID != "" {
		for _, c := range list {
			if c.ID == savedID {
				return c, true
			}
		}
	}
	return list[0], true
}

// Find returns the campaign with id.
func Find(list []CampaignData, id string) (CampaignData, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return CampaignData{}, false
}
