package api

import (
	"fmt"

	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
)

// RequestIDHeader carries the per-call id shared by client and server logs
const RequestIDHeader = "X-Request-ID"

// TaskItem is a task as it crosses the wire. DueDate is always an absolute
// RFC 3339 instant.
type TaskItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Only status is honoured.
type UpdateTaskRequest struct {
	Status *string `json:"status"`
}

// ErrorResponse is the JSON shape of every error answered by the server
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToTaskItem maps a task to its wire form
func ToTaskItem(t models.Task) TaskItem {
	return TaskItem{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     duedate.FormatInstant(t.DueDate),
	}
}

// ToTaskItems maps a list of tasks, never returning nil
func ToTaskItems(tasks []models.Task) []TaskItem {
	items := make([]TaskItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, ToTaskItem(t))
	}
	return items
}

// ToTask maps a wire task back to the model. A bad due date surfaces as a
// *duedate.FormatError, a bad status as models.ErrInvalidStatus.
func ToTask(item TaskItem) (models.Task, error) {
	status, err := models.ParseStatus(item.Status)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %d: %w", item.ID, err)
	}
	due, err := duedate.ParseInstant(item.DueDate)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %d: %w", item.ID, err)
	}
	return models.Task{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Status:      status,
		DueDate:     due,
	}, nil
}

func newCreateTaskRequest(t models.Task) CreateTaskRequest {
	description := t.Description
	status := string(t.Status)
	due := duedate.FormatInstant(t.DueDate)
	return CreateTaskRequest{
		Title:       t.Title,
		Description: &description,
		Status:      &status,
		DueDate:     &due,
	}
}
