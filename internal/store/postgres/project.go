package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow-io/taskflow/internal/domain"
)

// visibleProject is the access predicate shared by project-scoped queries:
// the acting user ($1) must own the project or appear in its member set.
const visibleProject = `(p.owner_id = $1 OR EXISTS (
	SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1))`

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO projects (title, description, owner_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		p.Title, p.Description, p.OwnerID, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("projectRepo.Create: %w", err)
	}

	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Project, error) {
	var p domain.Project

	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.title, p.description, p.owner_id, p.created_at
		 FROM projects p WHERE p.id = $2 AND `+visibleProject,
		userID, id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.OwnerID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *ProjectRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.title, p.description, p.owner_id, p.created_at
		 FROM projects p WHERE `+visibleProject+`
		 ORDER BY p.created_at
		 LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.ListForUser: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("projectRepo.ListForUser: scan: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projectRepo.ListForUser: rows: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, userID int64, p *domain.Project) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET title = $3, description = $4
		 WHERE id = $2 AND (owner_id = $1 OR EXISTS (
		   SELECT 1 FROM project_members m WHERE m.project_id = projects.id AND m.user_id = $1))`,
		userID, p.ID, p.Title, p.Description,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, userID, id int64) error {
	// Only the owner may delete a project.
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $2 AND owner_id = $1`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProjectRepo) AddMember(ctx context.Context, projectID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.AddMember: %w", err)
	}

	return nil
}

func (r *ProjectRepo) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	var ok bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM projects p WHERE p.id = $2 AND `+visibleProject+`
		 )`,
		userID, projectID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("projectRepo.IsMember: %w", err)
	}

	return ok, nil
}
