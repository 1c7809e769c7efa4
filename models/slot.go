package models

import "time"

// Slot represents a single meeting window. A slot is either potential
// (offered, booked=false) or booked (committed, booked=true).
type Slot struct {
	ID          string    `bson:"id" json:"id"`                                         // Unique slot identifier (UUID), assigned at creation
	Title       string    `bson:"title,omitempty" json:"title,omitempty"`               // Short event title
	Description string    `bson:"description,omitempty" json:"description,omitempty"`   // Detailed event description
	Name        string    `bson:"name,omitempty" json:"name,omitempty"`                 // Requester contact name
	PhoneNumber string    `bson:"phone_number,omitempty" json:"phone_number,omitempty"` // Requester contact number
	StartTime   time.Time `bson:"start_time" json:"start_time"`                         // UTC instant, inclusive
	EndTime     time.Time `bson:"end_time" json:"end_time"`                             // UTC instant, exclusive; always after StartTime
	Booked      bool      `bson:"booked" json:"booked"`                                 // false = available/potential, true = committed
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`                         // Timestamp when the slot record was created
}

// MeetingRequest carries the normalized fields of a schedule_meeting or
// add_potential_slot call into the scheduling engine. Times are UTC.
type MeetingRequest struct {
	Title       string
	Description string
	Name        string
	PhoneNumber string
	StartTime   time.Time
	EndTime     time.Time
}

// SlotRequest is the inbound JSON payload shared by the schedule_meeting and
// add_potential_slot endpoints. Timestamps are ISO-8601 UTC strings at the
// boundary (e.g. "2025-06-05T14:00:00Z").
type SlotRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
}
