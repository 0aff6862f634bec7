package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the gin engine with all routes and middleware.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware(), metricsMiddleware())

	r.POST("/ask", h.HandleAsk)
	r.GET("/poll", h.HandlePoll)
	r.GET("/usage", h.HandleUsage)
	r.GET("/healthz", h.HandleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
