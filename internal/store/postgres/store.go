package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow-io/taskflow/internal/domain"
)

type Store struct {
	pool     *pgxpool.Pool
	users    *UserRepo
	projects *ProjectRepo
	boards   *BoardRepo
	tasks    *TaskRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:     pool,
		users:    NewUserRepo(pool),
		projects: NewProjectRepo(pool),
		boards:   NewBoardRepo(pool),
		tasks:    NewTaskRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Projects() domain.ProjectRepository { return s.projects }
func (s *Store) Boards() domain.BoardRepository     { return s.boards }
func (s *Store) Tasks() domain.TaskRepository       { return s.tasks }
