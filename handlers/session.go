package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotify/services/session"
	"slotify/utils"
)

// SessionHandler exposes read access to agent session trails.
type SessionHandler struct {
	Sessions session.Store
}

func NewSessionHandler(sessions session.Store) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// GetSessionHandler returns the invocation trail for a session id. Unknown
// ids return an empty trail rather than 404: sessions come into existence on
// first append and expire silently.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid_request", "session id is required")
		return
	}

	trail, err := h.Sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		getLogger(c).Error("Failed to fetch session", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "unavailable", "session store unreachable")
		return
	}

	c.JSON(http.StatusOK, trail)
}
