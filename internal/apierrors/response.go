package apierrors

import "github.com/gin-gonic/gin"

// APIError represents the JSON error response structure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error sends an error response using a registered error code.
func Error(c *gin.Context, code string) {
	c.JSON(HTTPStatus(code), gin.H{"error": APIError{Code: code, Message: Message(code)}})
}

// ErrorWithMessage sends an error response with a custom message, keeping the
// registered status for the code.
func ErrorWithMessage(c *gin.Context, code, message string) {
	c.JSON(HTTPStatus(code), gin.H{"error": APIError{Code: code, Message: message}})
}
