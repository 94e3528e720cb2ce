package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-todo-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type taskRepo struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) domain.TaskRepository {
	return &taskRepo{db: db}
}

// withOwner appends the optional owner filter as the next positional argument.
func withOwner(query string, args []interface{}, ownerID string) (string, []interface{}) {
	if ownerID == "" {
		return query, args
	}
	args = append(args, ownerID)
	return fmt.Sprintf("%s AND user_id = $%d", query, len(args)), args
}

func (r *taskRepo) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	query := `SELECT id, COALESCE(task, ''), COALESCE(status, ''), COALESCE(user_id::text, '') FROM todos WHERE TRUE`
	query, args := withOwner(query, nil, ownerID)
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Task, &t.Status, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.db.QueryRow(ctx,
		`SELECT id, COALESCE(task, ''), COALESCE(status, ''), COALESCE(user_id::text, '') FROM todos WHERE id = $1`, id,
	).Scan(&t.ID, &t.Task, &t.Status, &t.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO todos (task, status, user_id) VALUES ($1, $2, $3) RETURNING id`,
		task.Task, string(task.Status), task.UserID,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id int64, ownerID string, status domain.TaskStatus) (int64, error) {
	query, args := withOwner(`UPDATE todos SET status = $1 WHERE id = $2`, []interface{}{string(status), id}, ownerID)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update task status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepo) Delete(ctx context.Context, id int64, ownerID string) (int64, error) {
	query, args := withOwner(`DELETE FROM todos WHERE id = $1`, []interface{}{id}, ownerID)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected(), nil
}
