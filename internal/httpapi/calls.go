package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"outbound-dialer/internal/bulk"
	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/reporting"
	"outbound-dialer/internal/session"
	"outbound-dialer/internal/telephony"
)

const defaultRangeDays = 30

type callRow struct {
	telephony.CallSummary
	StatusText             string `json:"statusText"`
	ConversationStatusText string `json:"conversationStatusText"`
}

type callsResponse struct {
	Count   int       `json:"count"`
	Results []callRow `json:"results"`
}

type callDetailResponse struct {
	telephony.CallDetails
	StatusText             string `json:"statusText"`
	ConversationStatusText string `json:"conversationStatusText"`
	SentimentText          string `json:"sentimentText"`
}

// ListCalls pages the campaign's calls. Query: skip, limit, from, to, search, status (repeatable), tag (repeatable).
// A rejected token or unknown outbound id clears the stored credentials.
func (h *Handlers) ListCalls(c *gin.Context) {
	s, ok := h.requireCredentials(c)
	if !ok {
		return
	}
	f, err := h.callsFilter(c)
	if err != nil {
		badRequest(c, "Invalid range", err.Error())
		return
	}

	page, err := h.Telephony.ListCalls(c.Request.Context(), s.TelephonyCredentials(), f)
	if err != nil {
		if telephony.IsCredentialFailure(err) {
			s.Invalidate(c.Request.Context(), "list calls")
		}
		fail(c, s, "Error", err)
		return
	}

	out := callsResponse{Count: page.Count, Results: make([]callRow, 0, len(page.Results))}
	for _, r := range page.Results {
		out.Results = append(out.Results, callRow{
			CallSummary:            r,
			StatusText:             telephony.StatusText(r.Status),
			ConversationStatusText: telephony.ConversationStatusText(r.ConversationStatus),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) callsFilter(c *gin.Context) (telephony.CallsFilter, error) {
	f := telephony.DefaultCallsFilter(h.now())
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("skip must be a non-negative integer")
		}
		f.Skip = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			return f, errors.New("limit must be between 1 and 100")
		}
		f.Limit = n
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, err := h.timeRange(c)
		if err != nil {
			return f, err
		}
		f.FromDate = from.UTC().Format(time.RFC3339)
		f.ToDate = to.UTC().Format(time.RFC3339)
	}
	f.SearchInput = strings.TrimSpace(c.Query("search"))
	if tags := c.QueryArray("tag"); len(tags) > 0 {
		f.Tags = tags
	}
	for _, v := range c.QueryArray("status") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("status must be an integer")
		}
		f.Statuses = append(f.Statuses, n)
	}
	return f, nil
}

func (h *Handlers) CallDetail(c *gin.Context) {
	s, ok := h.requireCredentials(c)
	if !ok {
		return
	}
	d, err := h.Telephony.GetCallDetail(c.Request.Context(), s.TelephonyCredentials().Token, c.Param("id"))
	if err != nil {
		fail(c, s, "Error", err)
		return
	}
	c.JSON(http.StatusOK, callDetailResponse{
		CallDetails:            d,
		StatusText:             telephony.StatusText(d.Status),
		ConversationStatusText: telephony.ConversationStatusText(d.ConversationStatus),
		SentimentText:          telephony.SentimentText(d.OverallSentiment),
	})
}

// PlacedCalls lists calls this service placed for the user. Query: from, to.
func (h *Handlers) PlacedCalls(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	from, to, err := h.timeRange(c)
	if err != nil {
		badRequest(c, "Invalid range", err.Error())
		return
	}
	list, err := h.Calls.List(c.Request.Context(), s.UserID, from, to)
	if err != nil {
		fail(c, nil, "Error", err)
		return
	}
	if list == nil {
		list = []calls.PlacedCall{}
	}
	c.JSON(http.StatusOK, gin.H{"calls": list})
}

// PlacedCallsSummary counts placed calls by day and outbound. Query: from, to, outbound_id.
func (h *Handlers) PlacedCallsSummary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	from, to, err := h.timeRange(c)
	if err != nil {
		badRequest(c, "Invalid range", err.Error())
		return
	}
	sum, err := h.Reports.PlacedCallsSummary(c.Request.Context(), reporting.PlacedCallsRequest{
		UserID:     s.UserID,
		Range:      reporting.TimeRange{From: from, To: to},
		OutboundID: strings.TrimSpace(c.Query("outbound_id")),
	})
	if err != nil {
		fail(c, nil, "Error", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Analytics returns the campaign dashboard counters. Query: from, to (default last 30 days).
func (h *Handlers) Analytics(c *gin.Context) {
	s, ok := h.requireCredentials(c)
	if !ok {
		return
	}
	from, to, err := h.timeRange(c)
	if err != nil {
		badRequest(c, "Invalid range", err.Error())
		return
	}
	snap, err := h.Telephony.GetAnalytics(c.Request.Context(), s.TelephonyCredentials(), from, to)
	if err != nil {
		fail(c, s, "Analytics Error", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// timeRange reads from/to as RFC 3339 or YYYY-MM-DD. Both absent means the last 30 days.
func (h *Handlers) timeRange(c *gin.Context) (time.Time, time.Time, error) {
	rawFrom, rawTo := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if rawFrom == "" && rawTo == "" {
		now := h.now()
		return now.AddDate(0, 0, -defaultRangeDays), now, nil
	}
	if rawFrom == "" || rawTo == "" {
		return time.Time{}, time.Time{}, errors.New("select both start and end dates")
	}
	from, err := parseTime(rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseTime(rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("start date must be before end date")
	}
	return from, to, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}

func (h *Handlers) requireCredentials(c *gin.Context) (*session.Session, bool) {
	s, ok := h.session(c)
	if !ok {
		return nil, false
	}
	if !s.Credentials().Configured() {
		fail(c, s, "Credentials required", bulk.ErrCredentialsRequired)
		return nil, false
	}
	return s, true
}
