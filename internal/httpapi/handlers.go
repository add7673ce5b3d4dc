package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"outbound-dialer/internal/auth"
	"outbound-dialer/internal/bulk"
	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/campaign"
	"outbound-dialer/internal/directory"
	"outbound-dialer/internal/leads"
	"outbound-dialer/internal/reporting"
	"outbound-dialer/internal/session"
	"outbound-dialer/internal/telephony"
	"outbound-dialer/internal/ws"
	"outbound-dialer/pkg/logger"
)

// Telephony is the part of the telephony client the handlers call directly.
type Telephony interface {
	ListCalls(ctx context.Context, creds telephony.Credentials, f telephony.CallsFilter) (telephony.CallsPage, error)
	GetCallDetail(ctx context.Context, token, callID string) (telephony.CallDetails, error)
	SetInboundActive(ctx context.Context, token, inboundID string, active bool) error
	GetAnalytics(ctx context.Context, creds telephony.Credentials, from, to time.Time) (telephony.AnalyticsSnapshot, error)
	VerifyCredentials(ctx context.Context, creds telephony.Credentials) error
}

type Directory interface {
	ListByEmail(ctx context.Context, email string) ([]directory.CampaignData, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Sessions  *session.Registry
	Telephony Telephony
	Directory Directory
	Calls     *calls.Log
	Reports   *reporting.Service
	Hub       *ws.Hub

	// AccountToken authorizes inbound toggles. Empty disables them.
	AccountToken string

	Now func() time.Time
}

// errorBody is the shape of every failed response.
type errorBody struct {
	Error       string `json:"error"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// session resolves the caller's session. It aborts with 401 when the auth gate did not run.
func (h *Handlers) session(c *gin.Context) (*session.Session, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: err.Error(), Title: "Unauthorized", Description: "Sign in again."})
		return nil, false
	}
	return h.Sessions.Get(uid), true
}

// fail writes an error response. A nil session skips the notification.
func fail(c *gin.Context, s *session.Session, title string, err error) {
	desc := describe(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromGin(c).Error(title, "err", err)
	} else {
		logger.FromGin(c).Warn(title, "err", err)
	}
	if s != nil {
		s.Notify.Error(title, desc)
	}
	c.AbortWithStatusJSON(status, errorBody{Error: err.Error(), Title: title, Description: desc})
}

func badRequest(c *gin.Context, title, desc string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "invalid request", Title: title, Description: desc})
}

func describe(err error) string {
	switch {
	case errors.Is(err, bulk.ErrCredentialsRequired), errors.Is(err, campaign.ErrCredentialsRequired):
		return "Please configure your API credentials first."
	case errors.Is(err, bulk.ErrNoPendingLeads):
		return "Please select at least one lead to call."
	case errors.Is(err, bulk.ErrRunInProgress):
		return "A bulk call run is already in progress."
	case errors.Is(err, bulk.ErrInvalidTimeframe):
		return "Timeframe must be between 3 and 30 seconds."
	case errors.Is(err, campaign.ErrToggleUnavailable):
		return "Campaign status is being checked or changed. Try again shortly."
	case errors.Is(err, leads.ErrNotFound):
		return "The lead no longer exists."
	case errors.Is(err, calls.ErrNotFound):
		return "The call was not found."
	case errors.Is(err, leads.ErrValidation):
		return err.Error()
	case errors.Is(err, errCredentialsRejected):
		return "Invalid credentials. Please check your Bearer Token and Outbound ID."
	case errors.Is(err, directory.ErrTimeout):
		return "Request timed out. Please try again."
	case errors.Is(err, directory.ErrUnavailable):
		return "Failed to fetch campaigns. Please try again later."
	default:
		return telephony.UserMessage(err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bulk.ErrCredentialsRequired), errors.Is(err, campaign.ErrCredentialsRequired):
		return http.StatusPreconditionFailed
	case errors.Is(err, bulk.ErrNoPendingLeads), errors.Is(err, bulk.ErrInvalidTimeframe),
		errors.Is(err, leads.ErrValidation), errors.Is(err, reporting.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, bulk.ErrRunInProgress), errors.Is(err, campaign.ErrToggleUnavailable):
		return http.StatusConflict
	case errors.Is(err, leads.ErrNotFound), errors.Is(err, calls.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bulk.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, telephony.ErrTimeout), errors.Is(err, directory.ErrTimeout):
		return http.StatusGatewayTimeout
	case telephony.StatusOf(err) > 0, errors.Is(err, directory.ErrUnavailable),
		errors.Is(err, telephony.ErrUnknownStatus), errors.Is(err, telephony.ErrMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Register mounts every dashboard route on g. g is expected to sit behind the access-token gate.
func (h *Handlers) Register(g *gin.RouterGroup) {
	g.GET("/credentials", h.GetCredentials)
	g.PUT("/credentials", h.PutCredentials)
	g.DELETE("/credentials", h.DeleteCredentials)

	g.GET("/campaigns", h.ListCampaigns)
	g.POST("/campaigns/select", h.SelectCampaign)
	g.GET("/campaign/status", h.CampaignStatus)
	g.POST("/campaign/toggle", h.ToggleCampaign)
	g.POST("/inbound/:id/active", h.SetInboundActive)

	g.GET("/leads", h.ListLeads)
	g.POST("/leads", h.AddLead)
	g.DELETE("/leads/:id", h.RemoveLead)
	g.POST("/leads/import/text", h.ImportText)
	g.POST("/leads/import/file", h.ImportFile)
	g.GET("/leads/export.csv", h.ExportCSV)
	g.GET("/leads/template.xlsx", h.TemplateXLSX)
	g.POST("/leads/:id/call", h.CallLead)

	g.GET("/bulk", h.BulkState)
	g.POST("/bulk/start", h.BulkStart)
	g.POST("/bulk/pause", h.BulkPause)
	g.POST("/bulk/resume", h.BulkResume)
	g.POST("/bulk/cancel", h.BulkCancel)

	g.GET("/calls", h.ListCalls)
	g.GET("/calls/placed", h.PlacedCalls)
	g.GET("/calls/placed/summary", h.PlacedCallsSummary)
	g.GET("/calls/:id", h.CallDetail)
	g.GET("/analytics", h.Analytics)

	g.GET("/notifications", h.ListNotifications)
	g.DELETE("/notifications/:id", h.DismissNotification)
	g.GET("/events", h.Events)
}
