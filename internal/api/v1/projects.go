package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskflow-io/taskflow/internal/domain"
	"github.com/taskflow-io/taskflow/internal/server/middleware"
)

type CreateProjectInput struct {
	Body struct {
		Title       string `json:"title" minLength:"1" maxLength:"200" doc:"Project title"`
		Description string `json:"description,omitempty" doc:"Project description"`
	}
}

type CreateProjectOutput struct {
	Body *domain.Project
}

type ListProjectsOutput struct {
	Body []*domain.Project
}

type GetProjectInput struct {
	ID int64 `path:"id" doc:"Project ID"`
}

type GetProjectOutput struct {
	Body *domain.Project
}

type UpdateProjectInput struct {
	ID   int64 `path:"id" doc:"Project ID"`
	Body struct {
		Title       string `json:"title,omitempty" maxLength:"200" doc:"Project title"`
		Description string `json:"description,omitempty" doc:"Project description"`
	}
}

type UpdateProjectOutput struct {
	Body *domain.Project
}

type DeleteProjectInput struct {
	ID int64 `path:"id" doc:"Project ID"`
}

type AddMemberInput struct {
	ID   int64 `path:"id" doc:"Project ID"`
	Body struct {
		UserID int64 `json:"user_id" doc:"User to add as member"`
	}
}

type AddMemberOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

type ProjectAnalyticsInput struct {
	ID int64 `path:"id" doc:"Project ID"`
}

type ProjectAnalyticsOutput struct {
	Body *domain.ProjectAnalytics
}

func RegisterProjectRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-project",
		Method:      http.MethodPost,
		Path:        "/projects",
		Summary:     "Create a new project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *CreateProjectInput) (*CreateProjectOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		p, err := domain.NewProject(userID, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := store.Projects().Create(ctx, p); err != nil {
			return nil, huma.Error500InternalServerError("failed to create project", err)
		}

		return &CreateProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects the user owns or belongs to",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, _ *struct{}) (*ListProjectsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		projects, err := store.Projects().ListForUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list projects", err)
		}

		return &ListProjectsOutput{Body: projects}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get a project by ID",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *GetProjectInput) (*GetProjectOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		p, err := store.Projects().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		return &GetProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/projects/{id}",
		Summary:     "Update a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *UpdateProjectInput) (*UpdateProjectOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Projects().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
		}
		if input.Body.Description != "" {
			existing.Description = input.Body.Description
		}

		if err := store.Projects().Update(ctx, userID, existing); err != nil {
			return nil, huma.Error500InternalServerError("failed to update project", err)
		}

		return &UpdateProjectOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{id}",
		Summary:     "Delete a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *DeleteProjectInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Projects().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete project", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-project-member",
		Method:      http.MethodPost,
		Path:        "/projects/{id}/members",
		Summary:     "Add a member to a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *AddMemberInput) (*AddMemberOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		// Only visible projects can gain members; also validates the project.
		if _, err := store.Projects().GetByID(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		if _, err := store.Users().GetByID(ctx, input.Body.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to look up user", err)
		}

		if err := store.Projects().AddMember(ctx, input.ID, input.Body.UserID); err != nil {
			return nil, huma.Error500InternalServerError("failed to add member", err)
		}

		out := &AddMemberOutput{}
		out.Body.Status = "user added"
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-analytics",
		Method:      http.MethodGet,
		Path:        "/projects/{id}/analytics",
		Summary:     "Aggregate task statistics for a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *ProjectAnalyticsInput) (*ProjectAnalyticsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if _, err := store.Projects().GetByID(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		stats, err := store.Tasks().Analytics(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to aggregate analytics", err)
		}

		return &ProjectAnalyticsOutput{Body: stats}, nil
	})
}
