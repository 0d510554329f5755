package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow-io/taskflow/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (board_id, title, description, status, priority, due_date, assigned_to, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		t.BoardID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, t.AssignedTo, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.board_id, t.title, t.description, t.status, t.priority,
		        t.due_date, t.assigned_to, t.created_by, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN boards b ON b.id = t.board_id
		 JOIN projects p ON p.id = b.project_id
		 WHERE t.id = $2 AND `+visibleProject,
		userID, id,
	).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TaskRepo) ListByBoard(ctx context.Context, userID, boardID int64) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.board_id, t.title, t.description, t.status, t.priority,
		        t.due_date, t.assigned_to, t.created_by, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN boards b ON b.id = t.board_id
		 JOIN projects p ON p.id = b.project_id
		 WHERE t.board_id = $2 AND `+visibleProject+`
		 ORDER BY t.priority DESC, t.created_at
		 LIMIT 1000`,
		userID, boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("taskRepo.ListByBoard: scan: %w", err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.ListByBoard: rows: %w", err)
	}

	return tasks, nil
}

// UpdateStatus is the atomic apply step for status-change intents: a single
// UPDATE scoped to the board, never a separate read then write.
func (r *TaskRepo) UpdateStatus(ctx context.Context, boardID, id int64, status domain.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("taskRepo.UpdateStatus: %q: %w", status, domain.ErrInvalidStatus)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = now() WHERE board_id = $2 AND id = $3`,
		status, boardID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Update(ctx context.Context, userID int64, t *domain.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $3, description = $4, priority = $5,
		        due_date = $6, assigned_to = $7, updated_at = now()
		 WHERE id = $2 AND EXISTS (
		   SELECT 1 FROM boards b JOIN projects p ON p.id = b.project_id
		   WHERE b.id = tasks.board_id AND `+visibleProject+`
		 )`,
		userID, t.ID, t.Title, t.Description, t.Priority, t.DueDate, t.AssignedTo,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks
		 WHERE id = $2 AND EXISTS (
		   SELECT 1 FROM boards b JOIN projects p ON p.id = b.project_id
		   WHERE b.id = tasks.board_id AND `+visibleProject+`
		 )`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Analytics(ctx context.Context, projectID int64) (*domain.ProjectAnalytics, error) {
	stats := &domain.ProjectAnalytics{ByAssignee: make(map[string]int64)}

	err := r.pool.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE t.status = 'DONE'),
		        count(*) FILTER (WHERE t.status = 'IN_PROGRESS'),
		        count(*) FILTER (WHERE t.due_date < now() AND t.status <> 'DONE')
		 FROM tasks t JOIN boards b ON b.id = t.board_id
		 WHERE b.project_id = $1`,
		projectID,
	).Scan(&stats.TotalTasks, &stats.CompletedTasks, &stats.InProgress, &stats.Overdue)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Analytics: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT coalesce(u.name, 'unassigned'), count(*)
		 FROM tasks t
		 JOIN boards b ON b.id = t.board_id
		 LEFT JOIN users u ON u.id = t.assigned_to
		 WHERE b.project_id = $1
		 GROUP BY 1`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Analytics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			count int64
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("taskRepo.Analytics: scan: %w", err)
		}
		stats.ByAssignee[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.Analytics: rows: %w", err)
	}

	return stats, nil
}
