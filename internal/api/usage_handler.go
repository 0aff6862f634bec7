package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type usageResponse struct {
	Used int `json:"used"`
	Left int `json:"left"`
}

// HandleUsage handles GET /usage. Looking up usage creates the session if
// needed and applies day rollover, so the numbers always describe today.
func (h *Handler) HandleUsage(c *gin.Context) {
	st := h.store.GetOrCreate(c.ClientIP())
	c.JSON(http.StatusOK, usageResponse{Used: st.DailyCount, Left: h.policy.Remaining(&st)})
}

// HandleHealthz handles GET /healthz.
func (h *Handler) HandleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.store.Len()})
}
