package v1_test

import (
	"context"

	"github.com/taskflow-io/taskflow/internal/domain"
	"github.com/taskflow-io/taskflow/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID int64) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	boards   domain.BoardRepository
	tasks    domain.TaskRepository
}

func (m *mockDataStore) Users() domain.UserRepository       { return m.users }
func (m *mockDataStore) Projects() domain.ProjectRepository { return m.projects }
func (m *mockDataStore) Boards() domain.BoardRepository     { return m.boards }
func (m *mockDataStore) Tasks() domain.TaskRepository       { return m.tasks }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id int64) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	updateFunc     func(ctx context.Context, u *domain.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

// ---------------------------------------------------------------------------
// Mock ProjectRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	createFunc      func(ctx context.Context, p *domain.Project) error
	getByIDFunc     func(ctx context.Context, userID, id int64) (*domain.Project, error)
	listForUserFunc func(ctx context.Context, userID int64) ([]*domain.Project, error)
	updateFunc      func(ctx context.Context, userID int64, p *domain.Project) error
	deleteFunc      func(ctx context.Context, userID, id int64) error
	addMemberFunc   func(ctx context.Context, projectID, userID int64) error
	isMemberFunc    func(ctx context.Context, projectID, userID int64) (bool, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Project, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockProjectRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	return m.listForUserFunc(ctx, userID)
}

func (m *mockProjectRepo) Update(ctx context.Context, userID int64, p *domain.Project) error {
	return m.updateFunc(ctx, userID, p)
}

func (m *mockProjectRepo) Delete(ctx context.Context, userID, id int64) error {
	return m.deleteFunc(ctx, userID, id)
}

func (m *mockProjectRepo) AddMember(ctx context.Context, projectID, userID int64) error {
	return m.addMemberFunc(ctx, projectID, userID)
}

func (m *mockProjectRepo) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	return m.isMemberFunc(ctx, projectID, userID)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc        func(ctx context.Context, userID int64, b *domain.Board) error
	getByIDFunc       func(ctx context.Context, userID, id int64) (*domain.Board, error)
	listByProjectFunc func(ctx context.Context, userID, projectID int64) ([]*domain.Board, error)
	deleteFunc        func(ctx context.Context, userID, id int64) error
	canAccessFunc     func(ctx context.Context, userID, boardID int64) (bool, error)
}

func (m *mockBoardRepo) Create(ctx context.Context, userID int64, b *domain.Board) error {
	return m.createFunc(ctx, userID, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Board, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockBoardRepo) ListByProject(ctx context.Context, userID, projectID int64) ([]*domain.Board, error) {
	return m.listByProjectFunc(ctx, userID, projectID)
}

func (m *mockBoardRepo) Delete(ctx context.Context, userID, id int64) error {
	return m.deleteFunc(ctx, userID, id)
}

func (m *mockBoardRepo) CanAccess(ctx context.Context, userID, boardID int64) (bool, error) {
	return m.canAccessFunc(ctx, userID, boardID)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc       func(ctx context.Context, t *domain.Task) error
	getByIDFunc      func(ctx context.Context, userID, id int64) (*domain.Task, error)
	listByBoardFunc  func(ctx context.Context, userID, boardID int64) ([]*domain.Task, error)
	updateStatusFunc func(ctx context.Context, boardID, id int64, status domain.TaskStatus) error
	updateFunc       func(ctx context.Context, userID int64, t *domain.Task) error
	deleteFunc       func(ctx context.Context, userID, id int64) error
	analyticsFunc    func(ctx context.Context, projectID int64) (*domain.ProjectAnalytics, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockTaskRepo) ListByBoard(ctx context.Context, userID, boardID int64) ([]*domain.Task, error) {
	return m.listByBoardFunc(ctx, userID, boardID)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, boardID, id int64, status domain.TaskStatus) error {
	return m.updateStatusFunc(ctx, boardID, id, status)
}

func (m *mockTaskRepo) Update(ctx context.Context, userID int64, t *domain.Task) error {
	return m.updateFunc(ctx, userID, t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, id int64) error {
	return m.deleteFunc(ctx, userID, id)
}

func (m *mockTaskRepo) Analytics(ctx context.Context, projectID int64) (*domain.ProjectAnalytics, error) {
	return m.analyticsFunc(ctx, projectID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock Broadcaster
// ---------------------------------------------------------------------------

type mockBroadcaster struct {
	broadcastFunc func(ctx context.Context, boardID int64, payload []byte) error
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, boardID int64, payload []byte) error {
	if m.broadcastFunc == nil {
		return nil
	}
	return m.broadcastFunc(ctx, boardID, payload)
}
