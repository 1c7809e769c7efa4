package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotify/utils"
)

// getLogger returns the request-scoped logger when middleware has stashed one
// on the Gin context, and the configured process logger otherwise.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}
