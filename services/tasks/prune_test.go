package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotify/models"
)

func TestNewSlotPruneTask(t *testing.T) {
	fireAt := time.Now().Add(time.Hour)

	task, opts, err := NewSlotPruneTask(models.SlotPrunePayload{RetentionDays: 14}, fireAt)

	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, TypeSlotPrune, task.Type())
	assert.Len(t, opts, 1, "expected a single ProcessAt option")

	var payload models.SlotPrunePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, 14, payload.RetentionDays)
}

func TestNewSlotPruneTask_ZeroRetentionRoundTrips(t *testing.T) {
	task, _, err := NewSlotPruneTask(models.SlotPrunePayload{}, time.Now())

	require.NoError(t, err)

	var payload models.SlotPrunePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, 0, payload.RetentionDays, "zero retention falls back to the configured default at handling time")
}
