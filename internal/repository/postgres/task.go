package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olopez/tasknest/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

const taskColumns = `id, user_id, title, description, done, attachments, created_at, updated_at`

type TaskRepository struct {
	db *Connection
}

func NewTaskRepository(db *Connection) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := `INSERT INTO tasks (id, user_id, title, description, done, attachments, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + taskColumns

	saved, err := r.scanTask(r.db.QueryRow(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Done, task.Attachments,
		task.CreatedAt, task.UpdatedAt,
	))
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return saved, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	task, err := r.scanTask(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task by id: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	query := `UPDATE tasks SET title = $3, description = $4, done = $5, attachments = $6, updated_at = NOW()
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + taskColumns

	saved, err := r.scanTask(r.db.QueryRow(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Done, task.Attachments,
	))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return saved, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) scanTask(row pgx.Row) (model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.Done, &task.Attachments,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}
