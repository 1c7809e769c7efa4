// File: mcptools/scheduling.go
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"slotify/models"
	"slotify/services/scheduling"
	"slotify/services/session"
	"slotify/utils"
)

// RegisterSchedulingTools registers the scheduling tools with the MCP server.
// These are the operations the external agent invokes; responses are JSON so
// the agent can relay structured results.
func RegisterSchedulingTools(s *mcpserver.MCPServer, engine scheduling.SchedulingEngine, sessions session.Store) error {
	scheduleMeetingTool := mcp.NewTool("schedule_meeting",
		mcp.WithDescription("Book a meeting over the given time range. Fails with {\"error\": \"conflict\"} if the range overlaps an existing booked slot."),
		mcp.WithString("title",
			mcp.Description("Short title for the meeting"),
		),
		mcp.WithString("description",
			mcp.Description("Detailed description of the meeting"),
		),
		mcp.WithString("name",
			mcp.Description("Name of the person or entity requesting the meeting"),
		),
		mcp.WithString("phone_number",
			mcp.Description("Contact number for the requester"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Meeting start (RFC3339 UTC, e.g., '2025-06-05T14:00:00Z')"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("Meeting end, exclusive (RFC3339 UTC, e.g., '2025-06-05T14:30:00Z')"),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional conversation id; invocations are appended to its history"),
		),
	)

	s.AddTool(scheduleMeetingTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleScheduleMeeting(ctx, request, engine, sessions)
	})

	getFreeSlotsTool := mcp.NewTool("get_free_slots",
		mcp.WithDescription("List the unbooked slots overlapping the given time range, ordered by start time. Returns a JSON array, possibly empty."),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Window start (RFC3339 UTC)"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("Window end, exclusive (RFC3339 UTC)"),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional conversation id; invocations are appended to its history"),
		),
	)

	s.AddTool(getFreeSlotsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetFreeSlots(ctx, request, engine, sessions)
	})

	addPotentialSlotTool := mcp.NewTool("add_potential_slot",
		mcp.WithDescription("Record an offered, unbooked slot. No conflict check is performed; potential slots may overlap each other."),
		mcp.WithString("title",
			mcp.Description("Short title for the offered slot"),
		),
		mcp.WithString("description",
			mcp.Description("Detailed description of the offered slot"),
		),
		mcp.WithString("name",
			mcp.Description("Name of the person or entity offering the slot"),
		),
		mcp.WithString("phone_number",
			mcp.Description("Contact number for the offerer"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Slot start (RFC3339 UTC)"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("Slot end, exclusive (RFC3339 UTC)"),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional conversation id; invocations are appended to its history"),
		),
	)

	s.AddTool(addPotentialSlotTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddPotentialSlot(ctx, request, engine, sessions)
	})

	return nil
}

func handleScheduleMeeting(ctx context.Context, request mcp.CallToolRequest, engine scheduling.SchedulingEngine, sessions session.Store) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	meeting, errResult := meetingFromArgs(args)
	if errResult != nil {
		return errResult, nil
	}

	slot, err := engine.BookMeeting(ctx, meeting)
	if err != nil {
		recordInvocation(ctx, sessions, args, "schedule_meeting", scheduling.ErrorCode(err), "")
		return schedulingErrorResult(err), nil
	}

	recordInvocation(ctx, sessions, args, "schedule_meeting", "booked", slot.ID)
	return jsonResult(slot)
}

func handleGetFreeSlots(ctx context.Context, request mcp.CallToolRequest, engine scheduling.SchedulingEngine, sessions session.Store) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	startStr, ok := args["start_time"].(string)
	if !ok || startStr == "" {
		return invalidRangeResult("start_time is required"), nil
	}
	endStr, ok := args["end_time"].(string)
	if !ok || endStr == "" {
		return invalidRangeResult("end_time is required"), nil
	}
	start, end, err := utils.ParseUTCRange(startStr, endStr)
	if err != nil {
		return invalidRangeResult(fmt.Sprintf("invalid timestamp: %v", err)), nil
	}

	slots, err := engine.GetFreeSlots(ctx, start, end)
	if err != nil {
		recordInvocation(ctx, sessions, args, "get_free_slots", scheduling.ErrorCode(err), "")
		return schedulingErrorResult(err), nil
	}
	if slots == nil {
		slots = []models.Slot{}
	}

	recordInvocation(ctx, sessions, args, "get_free_slots", "ok", "")
	return jsonResult(slots)
}

func handleAddPotentialSlot(ctx context.Context, request mcp.CallToolRequest, engine scheduling.SchedulingEngine, sessions session.Store) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	meeting, errResult := meetingFromArgs(args)
	if errResult != nil {
		return errResult, nil
	}

	slot, err := engine.AddPotentialSlot(ctx, meeting)
	if err != nil {
		recordInvocation(ctx, sessions, args, "add_potential_slot", scheduling.ErrorCode(err), "")
		return schedulingErrorResult(err), nil
	}

	recordInvocation(ctx, sessions, args, "add_potential_slot", "created", slot.ID)
	return jsonResult(slot)
}

// meetingFromArgs extracts and normalizes the shared meeting fields. On a
// malformed request it returns a non-nil tool error result.
func meetingFromArgs(args map[string]interface{}) (models.MeetingRequest, *mcp.CallToolResult) {
	startStr, ok := args["start_time"].(string)
	if !ok || startStr == "" {
		return models.MeetingRequest{}, invalidRangeResult("start_time is required")
	}
	endStr, ok := args["end_time"].(string)
	if !ok || endStr == "" {
		return models.MeetingRequest{}, invalidRangeResult("end_time is required")
	}
	start, end, err := utils.ParseUTCRange(startStr, endStr)
	if err != nil {
		return models.MeetingRequest{}, invalidRangeResult(fmt.Sprintf("invalid timestamp: %v", err))
	}

	title, _ := args["title"].(string)
	description, _ := args["description"].(string)
	name, _ := args["name"].(string)
	phone, _ := args["phone_number"].(string)

	return models.MeetingRequest{
		Title:       title,
		Description: description,
		Name:        name,
		PhoneNumber: phone,
		StartTime:   start,
		EndTime:     end,
	}, nil
}

// jsonResult marshals v into the tool response text.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// schedulingErrorResult renders an engine error as the {"error": <code>}
// payload callers key on. Engine errors are caller-visible outcomes, not
// protocol failures, so the Go error stays nil.
func schedulingErrorResult(err error) *mcp.CallToolResult {
	code := scheduling.ErrorCode(err)
	if code == "" {
		code = scheduling.CodeUnavailable
	}
	payload := map[string]string{"error": code, "message": err.Error()}
	b, merr := json.Marshal(payload)
	if merr != nil {
		return mcp.NewToolResultError(fmt.Sprintf(`{"error": %q}`, code))
	}
	return mcp.NewToolResultError(string(b))
}

func invalidRangeResult(msg string) *mcp.CallToolResult {
	b, err := json.Marshal(map[string]string{"error": scheduling.CodeInvalidRange, "message": msg})
	if err != nil {
		return mcp.NewToolResultError(`{"error": "invalid_range"}`)
	}
	return mcp.NewToolResultError(string(b))
}

// recordInvocation appends the invocation to the caller's session trail when
// a session_id argument was supplied. Best-effort.
func recordInvocation(ctx context.Context, sessions session.Store, args map[string]interface{}, tool, outcome, slotID string) {
	if sessions == nil {
		return
	}
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return
	}

	entry := models.SessionEntry{
		Tool:    tool,
		Outcome: outcome,
		SlotID:  slotID,
		At:      time.Now().UTC(),
	}
	if err := sessions.Append(ctx, sessionID, entry); err != nil {
		utils.GetLogger().Sugar().Warnf("failed to record session entry for %s: %v", sessionID, err)
	}
}
