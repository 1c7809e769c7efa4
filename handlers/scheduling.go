package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotify/models"
	"slotify/services/scheduling"
	"slotify/services/session"
	"slotify/utils"
)

// SessionIDHeader carries the caller's conversation id. When present, every
// scheduling invocation is appended to that session's history.
const SessionIDHeader = "X-Session-ID"

// SchedulingHandler serves the scheduling endpoints.
type SchedulingHandler struct {
	Engine   scheduling.SchedulingEngine
	Sessions session.Store
}

// NewSchedulingHandler constructs a handler over the given engine. The
// session store may be nil, in which case invocation recording is skipped.
func NewSchedulingHandler(engine scheduling.SchedulingEngine, sessions session.Store) *SchedulingHandler {
	return &SchedulingHandler{Engine: engine, Sessions: sessions}
}

// ScheduleMeetingHandler books a meeting over the requested window.
func (h *SchedulingHandler) ScheduleMeetingHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, scheduling.CodeInvalidRange, err.Error())
		return
	}

	meeting, err := toMeetingRequest(req)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, scheduling.CodeInvalidRange, err.Error())
		return
	}

	slot, err := h.Engine.BookMeeting(c.Request.Context(), meeting)
	if err != nil {
		h.recordInvocation(c, "schedule_meeting", scheduling.ErrorCode(err), "")
		respondSchedulingError(c, logger, err)
		return
	}

	h.recordInvocation(c, "schedule_meeting", "booked", slot.ID)
	c.JSON(http.StatusOK, slot)
}

// GetFreeSlotsHandler lists the unbooked slots overlapping the query window.
func (h *SchedulingHandler) GetFreeSlotsHandler(c *gin.Context) {
	logger := getLogger(c)

	startStr, endStr := c.Query("start_time"), c.Query("end_time")
	if startStr == "" || endStr == "" {
		utils.JSONError(c, http.StatusBadRequest, scheduling.CodeInvalidRange, "start_time and end_time query parameters are required")
		return
	}

	start, end, err := utils.ParseUTCRange(startStr, endStr)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, scheduling.CodeInvalidRange, err.Error())
		return
	}

	slots, err := h.Engine.GetFreeSlots(c.Request.Context(), start, end)
	if err != nil {
		h.recordInvocation(c, "get_free_slots", scheduling.ErrorCode(err), "")
		respondSchedulingError(c, logger, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}

	h.recordInvocation(c, "get_free_slots", "ok", "")
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// AddPotentialSlotHandler records an offered, unbooked slot.
func (h *SchedulingHandler) AddPotentialSlotHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, scheduling.CodeInvalidRange, err.Error())
		return
	}

	meeting, err := toMeetingRequest(req)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, scheduling.CodeInvalidRange, err.Error())
		return
	}

	slot, err := h.Engine.AddPotentialSlot(c.Request.Context(), meeting)
	if err != nil {
		h.recordInvocation(c, "add_potential_slot", scheduling.ErrorCode(err), "")
		respondSchedulingError(c, logger, err)
		return
	}

	h.recordInvocation(c, "add_potential_slot", "created", slot.ID)
	c.JSON(http.StatusCreated, slot)
}

// GetSlotHandler returns a single slot by id.
func (h *SchedulingHandler) GetSlotHandler(c *gin.Context) {
	logger := getLogger(c)

	slotID := c.Param("id")
	slot, err := h.Engine.GetSlot(c.Request.Context(), slotID)
	if err != nil {
		if errors.Is(err, scheduling.ErrSlotNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not_found", "slot not found")
			return
		}
		respondSchedulingError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// toMeetingRequest normalizes the inbound payload, parsing the boundary
// timestamps into UTC instants.
func toMeetingRequest(req models.SlotRequest) (models.MeetingRequest, error) {
	start, end, err := utils.ParseUTCRange(req.StartTime, req.EndTime)
	if err != nil {
		return models.MeetingRequest{}, err
	}
	return models.MeetingRequest{
		Title:       req.Title,
		Description: req.Description,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		StartTime:   start,
		EndTime:     end,
	}, nil
}

// respondSchedulingError maps engine error codes to HTTP statuses, keeping
// the {"error": <code>} payload shape.
func respondSchedulingError(c *gin.Context, logger *zap.Logger, err error) {
	var status int
	switch scheduling.ErrorCode(err) {
	case scheduling.CodeInvalidRange:
		status = http.StatusBadRequest
	case scheduling.CodeConflict:
		status = http.StatusConflict
	case scheduling.CodeUnavailable:
		status = http.StatusServiceUnavailable
		logger.Error("Slot store unavailable", zap.Error(err))
	default:
		logger.Error("Unexpected scheduling failure", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	var se *scheduling.SchedulingError
	if errors.As(err, &se) {
		utils.JSONError(c, status, se.Code, se.Message)
		return
	}
	utils.JSONError(c, status, "internal", err.Error())
}

// recordInvocation appends a tool-invocation entry to the caller's session
// trail. Recording is best-effort; failures are logged and never surfaced.
func (h *SchedulingHandler) recordInvocation(c *gin.Context, tool, outcome, slotID string) {
	if h.Sessions == nil {
		return
	}
	sessionID := c.GetHeader(SessionIDHeader)
	if sessionID == "" {
		return
	}

	entry := models.SessionEntry{
		Tool:    tool,
		Outcome: outcome,
		SlotID:  slotID,
		At:      time.Now().UTC(),
	}
	if err := h.Sessions.Append(c.Request.Context(), sessionID, entry); err != nil {
		getLogger(c).Warn("Failed to record session entry",
			zap.String("sessionID", sessionID), zap.Error(err))
	}
}
