package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"outbound-dialer/internal/campaign"
)

// CampaignStatus re-reads the campaign status and returns the toggle view.
func (h *Handlers) CampaignStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := s.Toggle.RefreshStatus(c.Request.Context()); err != nil && !errors.Is(err, campaign.ErrToggleUnavailable) {
		// The toggle already notified.
		fail(c, nil, "Status check failed", err)
		return
	}
	c.JSON(http.StatusOK, s.Toggle.View())
}

func (h *Handlers) ToggleCampaign(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := s.Toggle.Toggle(c.Request.Context()); err != nil {
		fail(c, nil, "Toggle failed", err)
		return
	}
	c.JSON(http.StatusOK, s.Toggle.View())
}

type inboundActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// SetInboundActive switches an inbound line with the account-level key.
func (h *Handlers) SetInboundActive(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.AccountToken == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "account key not configured", Title: "API configuration missing", Description: "Inbound toggles are not configured on this server."})
		return
	}
	var req inboundActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		badRequest(c, "Error", "isActive is required")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if err := h.Telephony.SetInboundActive(c.Request.Context(), h.AccountToken, id, *req.IsActive); err != nil {
		fail(c, s, "Toggle failed", err)
		return
	}
	word := "inactive"
	if *req.IsActive {
		word = "active"
	}
	s.Notify.Info("Success", "Inbound "+id+" is now "+word+".")
	c.JSON(http.StatusOK, gin.H{"id": id, "isActive": *req.IsActive})
}
