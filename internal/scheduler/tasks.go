package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskProcessSheet = "orders.process_sheet"

const TaskRetentionCleanup = "orders.retention_cleanup"

type ProcessSheetPayload struct {
	SheetName string `json:"sheetName"`
}

func NewProcessSheetTask(payload ProcessSheetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProcessSheet, data), nil
}

func ParseProcessSheetPayload(task *asynq.Task) (ProcessSheetPayload, error) {
	var payload ProcessSheetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessSheetPayload{}, err
	}
	return payload, nil
}

func NewRetentionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskRetentionCleanup, nil)
}
