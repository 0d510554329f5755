package v1

import (
	"context"

	"github.com/taskflow-io/taskflow/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Projects() domain.ProjectRepository
	Boards() domain.BoardRepository
	Tasks() domain.TaskRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Broadcaster publishes board events so WebSocket subscribers see changes
// made over the REST API. *realtime.Hub satisfies this interface.
type Broadcaster interface {
	Broadcast(ctx context.Context, boardID int64, payload []byte) error
}
