package domain

import (
	"context"
	"errors"
	"time"
)

type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProject creates a Project with validated required fields.
func NewProject(ownerID int64, title, description string) (*Project, error) {
	if ownerID == 0 {
		return nil, errors.New("project: owner is required")
	}
	if title == "" {
		return nil, errors.New("project: title is required")
	}
	return &Project{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}, nil
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	// GetByID is visible only to the owner and members.
	GetByID(ctx context.Context, userID, id int64) (*Project, error)
	ListForUser(ctx context.Context, userID int64) ([]*Project, error)
	Update(ctx context.Context, userID int64, p *Project) error
	Delete(ctx context.Context, userID, id int64) error
	AddMember(ctx context.Context, projectID, userID int64) error
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
}
