package models

// SlotPrunePayload describes one pruning pass over the slot collection.
// Booked slots are never pruned; only stale offered slots are removed.
type SlotPrunePayload struct {
	RetentionDays int `json:"retentionDays"`
}
