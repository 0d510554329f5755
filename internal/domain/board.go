package domain

import "context"

type Board struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

type BoardRepository interface {
	Create(ctx context.Context, userID int64, b *Board) error
	GetByID(ctx context.Context, userID, id int64) (*Board, error)
	ListByProject(ctx context.Context, userID, projectID int64) ([]*Board, error)
	Delete(ctx context.Context, userID, id int64) error
	// CanAccess reports whether the user owns or is a member of the project
	// the board belongs to. Unknown boards yield (false, nil).
	CanAccess(ctx context.Context, userID, boardID int64) (bool, error)
}
