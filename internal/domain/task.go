package domain

import (
	"context"
	"time"
)

// TaskStatus is the kanban column a task currently occupies. Values match the
// wire protocol, so they are stored and serialized verbatim.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is one of the four known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          int64      `json:"id"`
	BoardID     int64      `json:"board_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	CreatedBy   int64      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProjectAnalytics aggregates task counts for one project.
type ProjectAnalytics struct {
	TotalTasks     int64            `json:"total_tasks"`
	CompletedTasks int64            `json:"completed_tasks"`
	InProgress     int64            `json:"in_progress"`
	Overdue        int64            `json:"overdue"`
	ByAssignee     map[string]int64 `json:"by_user"`
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	// GetByID is scoped to the acting user: the task is only visible when the
	// user owns or is a member of the enclosing project.
	GetByID(ctx context.Context, userID, id int64) (*Task, error)
	ListByBoard(ctx context.Context, userID, boardID int64) ([]*Task, error)
	// UpdateStatus atomically sets the status of a task on the given board.
	// Returns ErrInvalidStatus for unknown status values and ErrNotFound when
	// no task with that id exists on the board.
	UpdateStatus(ctx context.Context, boardID, id int64, status TaskStatus) error
	Update(ctx context.Context, userID int64, t *Task) error
	Delete(ctx context.Context, userID, id int64) error
	Analytics(ctx context.Context, projectID int64) (*ProjectAnalytics, error)
}
