package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
)

// taskRow mirrors the tasks table. due_date holds the canonical RFC 3339
// instant so both drivers store it identically.
type taskRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Status      string `db:"status"`
	DueDate     string `db:"due_date"`
}

func (r taskRow) toTask() (models.Task, error) {
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return models.Task{}, err
	}
	due, err := duedate.ParseInstant(r.DueDate)
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		DueDate:     due,
	}, nil
}

// CreateTask creates a new task and returns it with its id
func (db *DB) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var id int64
	err := db.QueryRowxContext(ctx, db.Rebind(`
		INSERT INTO tasks (title, description, status, due_date) VALUES (?, ?, ?, ?)
		RETURNING id
	`), t.Title, t.Description, string(t.Status), duedate.FormatInstant(t.DueDate)).Scan(&id)
	if err != nil {
		return models.Task{}, err
	}

	return db.GetTask(ctx, id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var row taskRow
	err := db.GetContext(ctx, &row, db.Rebind(`
		SELECT id, title, description, status, due_date
		FROM tasks WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, models.ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return row.toTask()
}

// ListTasks returns all tasks in creation order
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	var rows []taskRow
	err := db.SelectContext(ctx, &rows, `
		SELECT id, title, description, status, due_date
		FROM tasks ORDER BY id
	`)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// UpdateTaskStatus changes only the status of a task
func (db *DB) UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	result, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), string(status), id)
	if err != nil {
		return models.Task{}, err
	}
	if err := requireRow(result); err != nil {
		return models.Task{}, err
	}
	return db.GetTask(ctx, id)
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, db.Rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// TaskCount returns the number of tasks
func (db *DB) TaskCount(ctx context.Context) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM tasks")
	return count, err
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
