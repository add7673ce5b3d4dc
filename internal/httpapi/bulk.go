package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"outbound-dialer/internal/bulk"
)

type bulkStartRequest struct {
	LeadIDs []string `json:"leadIds"`
	// Timeframe is the delay between calls in seconds. Zero uses the server default.
	Timeframe int `json:"timeframe"`
}

func (h *Handlers) BulkStart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req bulkStartRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.LeadIDs) == 0 {
		s.Notify.Error("No leads selected", "Please select at least one lead to call.")
		badRequest(c, "No leads selected", "Please select at least one lead to call.")
		return
	}
	selected, err := s.Leads.Select(req.LeadIDs)
	if err != nil {
		fail(c, s, "Error", err)
		return
	}
	st, err := s.Sequencer.Start(c.Request.Context(), selected, time.Duration(req.Timeframe)*time.Second)
	if err != nil {
		fail(c, s, startTitle(err), err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func startTitle(err error) string {
	switch {
	case errors.Is(err, bulk.ErrCredentialsRequired):
		return "Credentials required"
	case errors.Is(err, bulk.ErrNoPendingLeads):
		return "No leads selected"
	default:
		return "Error"
	}
}

func (h *Handlers) BulkPause(c *gin.Context) {
	h.bulkCommand(c, (*bulk.Sequencer).Pause)
}

func (h *Handlers) BulkResume(c *gin.Context) {
	h.bulkCommand(c, (*bulk.Sequencer).Resume)
}

func (h *Handlers) BulkCancel(c *gin.Context) {
	h.bulkCommand(c, (*bulk.Sequencer).Cancel)
}

func (h *Handlers) BulkState(c *gin.Context) {
	h.bulkCommand(c, (*bulk.Sequencer).State)
}

func (h *Handlers) bulkCommand(c *gin.Context, cmd func(*bulk.Sequencer, context.Context) (bulk.State, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := cmd(s.Sequencer, c.Request.Context())
	if err != nil {
		fail(c, nil, "Error", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
