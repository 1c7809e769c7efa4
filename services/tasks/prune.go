package tasks

import (
	"encoding/json"
	"time"

	"slotify/models"

	"github.com/hibiken/asynq"
)

const TypeSlotPrune = "slots:prune"

func NewSlotPruneTask(payload models.SlotPrunePayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSlotPrune, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
