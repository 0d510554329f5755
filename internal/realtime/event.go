package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taskflow-io/taskflow/internal/domain"
)

// Wire protocol actions and event types.
const (
	ActionUpdateStatus  = "update_status"
	EventTypeTaskUpdate = "task_update"
)

// ErrDecode is returned for frames that are not valid JSON objects or are
// missing required fields.
var ErrDecode = errors.New("realtime: undecodable frame")

// Intent is a client-submitted request to act on a task, not yet validated
// or applied.
type Intent struct {
	TaskID int64
	Action string
	Status string
}

// DecodeIntent parses a text frame into an Intent. task_id and action are
// always required; status is required when the action is update_status.
// Unknown keys are ignored for forward compatibility.
func DecodeIntent(data []byte) (*Intent, error) {
	var frame struct {
		TaskID *int64  `json:"task_id"`
		Action *string `json:"action"`
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("realtime.DecodeIntent: %w", ErrDecode)
	}
	if frame.TaskID == nil || frame.Action == nil {
		return nil, fmt.Errorf("realtime.DecodeIntent: %w", ErrDecode)
	}

	intent := &Intent{TaskID: *frame.TaskID, Action: *frame.Action}
	if intent.Action == ActionUpdateStatus {
		if frame.Status == nil {
			return nil, fmt.Errorf("realtime.DecodeIntent: %w", ErrDecode)
		}
		intent.Status = *frame.Status
	}

	return intent, nil
}

// TaskEvent is the broadcast payload for an applied status change. Immutable
// once constructed; the same bytes go to every subscriber.
type TaskEvent struct {
	Type   string            `json:"type"`
	TaskID int64             `json:"task_id"`
	Action string            `json:"action"`
	Status domain.TaskStatus `json:"status"`
}

// NewTaskUpdate builds the event for a successfully applied status change.
func NewTaskUpdate(taskID int64, status domain.TaskStatus) TaskEvent {
	return TaskEvent{
		Type:   EventTypeTaskUpdate,
		TaskID: taskID,
		Action: ActionUpdateStatus,
		Status: status,
	}
}

// Encode serializes the event envelope.
func (e TaskEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("realtime.TaskEvent.Encode: %w", err)
	}
	return data, nil
}
