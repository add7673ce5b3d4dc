package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"outbound-dialer/internal/auth"
	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/directory"
	"outbound-dialer/internal/session"
	"outbound-dialer/internal/telephony"
)

// errCredentialsRejected marks a verify call the telephony API refused with 401 or 403.
var errCredentialsRejected = errors.New("credentials rejected")

// credentialsView never carries the bearer token itself.
type credentialsView struct {
	OutboundID     string `json:"outboundId"`
	CampaignID     string `json:"campaignId,omitempty"`
	HasBearerToken bool   `json:"hasBearerToken"`
	Configured     bool   `json:"configured"`
}

func viewOf(c credentials.Credentials) credentialsView {
	return credentialsView{
		OutboundID:     c.OutboundID,
		CampaignID:     c.CampaignID,
		HasBearerToken: c.Token() != "",
		Configured:     c.Configured(),
	}
}

type putCredentialsRequest struct {
	OutboundID  string `json:"outboundId"`
	BearerToken string `json:"bearerToken"`
	CampaignID  string `json:"campaignId"`
}

func (h *Handlers) GetCredentials(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(s.Credentials()))
}

// PutCredentials stores credentials after a live test call accepted them.
func (h *Handlers) PutCredentials(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req putCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing information", "Please enter both Outbound ID and Bearer Token")
		return
	}
	creds := credentials.Credentials{
		OutboundID:  strings.TrimSpace(req.OutboundID),
		BearerToken: credentials.NormalizeToken(req.BearerToken),
		CampaignID:  strings.TrimSpace(req.CampaignID),
	}
	if !creds.Configured() {
		badRequest(c, "Missing information", "Please enter both Outbound ID and Bearer Token")
		return
	}

	if err := h.Telephony.VerifyCredentials(c.Request.Context(), telephony.Credentials{OutboundID: creds.OutboundID, Token: creds.Token()}); err != nil {
		if errors.Is(err, telephony.ErrAuth) {
			err = fmt.Errorf("%w: %w", errCredentialsRejected, err)
		}
		fail(c, s, "Error", err)
		return
	}
	s.SaveCredentials(c.Request.Context(), creds)
	s.Notify.Info("Success", "Credentials saved successfully!")
	c.JSON(http.StatusOK, viewOf(s.Credentials()))
}

func (h *Handlers) DeleteCredentials(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.ClearCredentials(c.Request.Context())
	s.Notify.Info("Cleared", "Stored credentials have been cleared.")
	c.JSON(http.StatusOK, viewOf(s.Credentials()))
}

type campaignView struct {
	ID           string `json:"id"`
	CampaignName string `json:"campaignName"`
	OutboundID   string `json:"outboundId"`
}

type campaignsResponse struct {
	Campaigns []campaignView `json:"campaigns"`
	Selected  *campaignView  `json:"selected"`
}

func campaignViews(list []directory.CampaignData) []campaignView {
	out := make([]campaignView, 0, len(list))
	for _, d := range list {
		out = append(out, campaignView{ID: d.ID, CampaignName: d.CampaignName, OutboundID: d.OutboundID})
	}
	return out
}

// ListCampaigns loads the user's campaigns and selects the saved one, else the first.
// A selection that differs from the stored credentials replaces them.
func (h *Handlers) ListCampaigns(c *gin.Context) {
	s, list, ok := h.campaigns(c)
	if !ok {
		return
	}
	resp := campaignsResponse{Campaigns: campaignViews(list)}
	if len(list) == 0 {
		s.Notify.Info("No campaigns found", "No campaigns found for this email address.")
		c.JSON(http.StatusOK, resp)
		return
	}

	cur := s.Credentials()
	sel, _ := directory.Select(list, cur.CampaignID)
	if sel.ID != cur.CampaignID || sel.OutboundID != cur.OutboundID || credentials.NormalizeToken(sel.BearerToken) != cur.Token() {
		applyCampaign(c, s, sel)
	}
	resp.Selected = &campaignView{ID: sel.ID, CampaignName: sel.CampaignName, OutboundID: sel.OutboundID}
	c.JSON(http.StatusOK, resp)
}

type selectCampaignRequest struct {
	CampaignID string `json:"campaignId"`
}

func (h *Handlers) SelectCampaign(c *gin.Context) {
	var req selectCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CampaignID) == "" {
		badRequest(c, "No campaigns", "campaignId is required")
		return
	}
	s, list, ok := h.campaigns(c)
	if !ok {
		return
	}
	sel, found := directory.Find(list, req.CampaignID)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "campaign not found", Title: "No campaigns", Description: "The selected campaign does not exist."})
		return
	}
	applyCampaign(c, s, sel)
	s.Notify.Info("Campaign selected", sel.CampaignName)
	c.JSON(http.StatusOK, campaignView{ID: sel.ID, CampaignName: sel.CampaignName, OutboundID: sel.OutboundID})
}

func (h *Handlers) campaigns(c *gin.Context) (*session.Session, []directory.CampaignData, bool) {
	s, ok := h.session(c)
	if !ok {
		return nil, nil, false
	}
	email, err := auth.Email(c.Request.Context())
	if err != nil {
		badRequest(c, "No campaigns", "Your account has no email address.")
		return nil, nil, false
	}
	list, err := h.Directory.ListByEmail(c.Request.Context(), email)
	if err != nil {
		fail(c, s, "Error", err)
		return nil, nil, false
	}
	return s, list, true
}

func applyCampaign(c *gin.Context, s *session.Session, d directory.CampaignData) {
	s.SaveCredentials(c.Request.Context(), credentials.Credentials{
		OutboundID:  d.OutboundID,
		BearerToken: d.BearerToken,
		CampaignID:  d.ID,
	})
}
