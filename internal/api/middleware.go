package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsMiddleware allows the browser frontend to call the API from any
// origin. The service has no cookie-based auth, so a permissive policy is
// fine here.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
