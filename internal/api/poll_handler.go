package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biasbot/biasbot/internal/session"
)

type pollResponse struct {
	Messages []session.QueuedMessage `json:"messages"`
}

// HandlePoll handles GET /poll. The caller is keyed by its network address;
// the session's outbound queue is drained atomically, so no message is ever
// delivered twice. Polling never fails: an unknown client gets an empty list.
func (h *Handler) HandlePoll(c *gin.Context) {
	msgs := h.store.Drain(c.ClientIP())
	if msgs == nil {
		msgs = []session.QueuedMessage{}
	}
	c.JSON(http.StatusOK, pollResponse{Messages: msgs})
}
