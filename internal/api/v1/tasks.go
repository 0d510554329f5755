package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/taskflow-io/taskflow/internal/domain"
	"github.com/taskflow-io/taskflow/internal/realtime"
	"github.com/taskflow-io/taskflow/internal/server/middleware"
)

type CreateTaskInput struct {
	Body struct {
		BoardID     int64      `json:"board_id" doc:"Board ID"`
		Title       string     `json:"title" minLength:"1" maxLength:"200" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		Priority    int        `json:"priority,omitempty" doc:"Task priority (0=default)"`
		DueDate     *time.Time `json:"due_date,omitempty" doc:"Due date"`
		AssignedTo  *int64     `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	BoardID int64 `query:"board_id" required:"true" doc:"Board ID"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID int64 `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   int64 `path:"id" doc:"Task ID"`
	Body struct {
		Title       string     `json:"title,omitempty" maxLength:"200" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		Priority    *int       `json:"priority,omitempty" doc:"Task priority"`
		DueDate     *time.Time `json:"due_date,omitempty" doc:"Due date"`
		AssignedTo  *int64     `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskStatusInput struct {
	ID   int64 `path:"id" doc:"Task ID"`
	Body struct {
		Status string `json:"status" minLength:"1" doc:"Target status"`
	}
}

type UpdateTaskStatusOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID int64 `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore, hub Broadcaster) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if _, err := store.Boards().GetByID(ctx, userID, input.Body.BoardID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate board", err)
		}

		now := time.Now()
		t := &domain.Task{
			BoardID:     input.Body.BoardID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      domain.TaskStatusTodo,
			Priority:    input.Body.Priority,
			DueDate:     input.Body.DueDate,
			AssignedTo:  input.Body.AssignedTo,
			CreatedBy:   userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks on a board",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		tasks, err := store.Tasks().ListByBoard(ctx, userID, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
		}
		if input.Body.Description != "" {
			existing.Description = input.Body.Description
		}
		if input.Body.Priority != nil {
			existing.Priority = *input.Body.Priority
		}
		if input.Body.DueDate != nil {
			existing.DueDate = input.Body.DueDate
		}
		if input.Body.AssignedTo != nil {
			existing.AssignedTo = input.Body.AssignedTo
		}
		existing.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, userID, existing); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		return &UpdateTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task-status",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/status",
		Summary:     "Update task status",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskStatusInput) (*UpdateTaskStatusOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		target := domain.TaskStatus(input.Body.Status)
		if !target.Valid() {
			return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
		}

		if err := store.Tasks().UpdateStatus(ctx, existing.BoardID, input.ID, target); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to update task status", err)
		}

		existing.Status = target
		existing.UpdatedAt = time.Now()

		// WebSocket subscribers of the board see REST-originated changes too.
		if payload, encErr := realtime.NewTaskUpdate(existing.ID, target).Encode(); encErr == nil {
			if pubErr := hub.Broadcast(ctx, existing.BoardID, payload); pubErr != nil {
				log.Warn().Err(pubErr).Int64("board_id", existing.BoardID).Msg("task status broadcast failed")
			}
		}

		return &UpdateTaskStatusOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Tasks().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		return nil, nil
	})
}
