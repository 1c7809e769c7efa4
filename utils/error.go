package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the wire shape of every failure the API emits: a stable
// machine-readable code plus a human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ErrorHandler catches panics from downstream handlers and converts them to
// the standard error envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "internal",
					Message: "an unexpected error occurred",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized error envelope.
func JSONError(c *gin.Context, status int, code string, message string) {
	GetLogger().Warn("Request failed",
		zap.Int("status", status), zap.String("code", code), zap.String("message", message))
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}
