// File: slotify/handlers/handlerBundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	// Scheduling endpoints
	ScheduleMeetingHandler  gin.HandlerFunc
	GetFreeSlotsHandler     gin.HandlerFunc
	AddPotentialSlotHandler gin.HandlerFunc
	GetSlotHandler          gin.HandlerFunc

	// Session endpoints
	GetSessionHandler gin.HandlerFunc
}
