package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow-io/taskflow/internal/domain"
)

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

// Create inserts a board into a project the user can see. ErrNotFound covers
// both an unknown and an inaccessible project.
func (r *BoardRepo) Create(ctx context.Context, userID int64, b *domain.Board) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO boards (project_id, name)
		 SELECT p.id, $3::text FROM projects p
		 WHERE p.id = $2 AND `+visibleProject+`
		 RETURNING id`,
		userID, b.ProjectID, b.Name,
	).Scan(&b.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("boardRepo.Create: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("boardRepo.Create: %w", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT b.id, b.project_id, b.name
		 FROM boards b JOIN projects p ON p.id = b.project_id
		 WHERE b.id = $2 AND `+visibleProject,
		userID, id,
	).Scan(&b.ID, &b.ProjectID, &b.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	return &b, nil
}

func (r *BoardRepo) ListByProject(ctx context.Context, userID, projectID int64) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.project_id, b.name
		 FROM boards b JOIN projects p ON p.id = b.project_id
		 WHERE b.project_id = $2 AND `+visibleProject+`
		 ORDER BY b.id
		 LIMIT 1000`,
		userID, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListByProject: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name); err != nil {
			return nil, fmt.Errorf("boardRepo.ListByProject: scan: %w", err)
		}
		boards = append(boards, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.ListByProject: rows: %w", err)
	}

	return boards, nil
}

func (r *BoardRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM boards
		 USING projects p
		 WHERE boards.project_id = p.id AND boards.id = $2 AND `+visibleProject,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

// CanAccess is the capability check consulted before a WebSocket session for
// the board is allowed to open.
func (r *BoardRepo) CanAccess(ctx context.Context, userID, boardID int64) (bool, error) {
	var ok bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM boards b JOIN projects p ON p.id = b.project_id
		   WHERE b.id = $2 AND `+visibleProject+`
		 )`,
		userID, boardID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("boardRepo.CanAccess: %w", err)
	}

	return ok, nil
}
