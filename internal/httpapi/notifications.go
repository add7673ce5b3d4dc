package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListNotifications(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": s.Notify.List()})
}

func (h *Handlers) DismissNotification(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if !s.Notify.Dismiss(c.Param("id")) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "notification not found", Title: "Error", Description: "The notification was already dismissed."})
		return
	}
	c.Status(http.StatusNoContent)
}

// Events upgrades to a websocket carrying the user's bulk and notification events.
func (h *Handlers) Events(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.Hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "event stream disabled", Title: "Error", Description: "Live updates are not available."})
		return
	}
	h.Hub.ServeWS(c.Writer, c.Request, s.UserID)
}
