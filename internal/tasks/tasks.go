package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeDocumentProcess = "document:process"
	TypeDocumentCleanup = "document:cleanup"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	DocumentID string `json:"document_id,omitempty"`
}

// NewDocumentProcessTask creates a task to process an uploaded document
func NewDocumentProcessTask(documentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		DocumentID: documentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeDocumentProcess, payload), nil
}

// NewDocumentCleanupTask creates a task to delete stale failed documents
func NewDocumentCleanupTask() (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeDocumentCleanup, payload), nil
}

// ParseTaskPayload parses task payload from Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
