package models

import "time"

// SessionEntry is a single tool-invocation record appended to an agent
// session trail.
type SessionEntry struct {
	Tool    string    `json:"tool"`              // invoked operation name
	Outcome string    `json:"outcome"`           // e.g. "booked", "conflict", "invalid_range"
	SlotID  string    `json:"slot_id,omitempty"` // affected slot, when any
	At      time.Time `json:"at"`
}

// AgentSession is the conversational-state view kept for an external agent:
// an append-only trail of the tool invocations it issued. The scheduling core
// never reads it; it exists so callers can reconstruct what a session did.
type AgentSession struct {
	ID      string         `json:"id"`
	Entries []SessionEntry `json:"entries"`
}
