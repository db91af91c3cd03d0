package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
)

var due = time.Date(2027, 3, 5, 14, 30, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func writeJSON(t *testing.T, w http.ResponseWriter, code int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_CreateTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"title": "Review case documents",
			"description": "Smith vs. Jones",
			"status": "Pending",
			"dueDate": "2027-03-05T14:30:00Z"
		}`, string(body))

		writeJSON(t, w, http.StatusCreated, TaskItem{
			ID: 7, Title: "Review case documents", Description: "Smith vs. Jones",
			Status: "Pending", DueDate: "2027-03-05T14:30:00Z",
		})
	})

	got, err := client.CreateTask(context.Background(), models.Task{
		Title:       "Review case documents",
		Description: "Smith vs. Jones",
		Status:      models.StatusPending,
		DueDate:     due,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, due.Equal(got.DueDate))
}

func TestClient_GetTaskNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/42", r.URL.Path)
		writeJSON(t, w, http.StatusNotFound, ErrorResponse{Error: ErrorDetails{Code: 404, Message: "task not found"}})
	})

	_, err := client.GetTask(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.False(t, models.IsTransport(err))
}

func TestClient_ListTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(t, w, http.StatusOK, []TaskItem{
			{ID: 1, Title: "a", Status: "Pending", DueDate: "2027-03-05T14:30:00Z"},
			{ID: 2, Title: "b", Status: "Completed", DueDate: "2027-03-06T15:30:00+01:00"},
		})
	})

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, models.StatusCompleted, tasks[1].Status)
	assert.Equal(t, time.Date(2027, 3, 6, 14, 30, 0, 0, time.UTC), tasks[1].DueDate)
}

func TestClient_ListTasksMalformedInstant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []TaskItem{
			{ID: 1, Title: "a", Status: "Pending", DueDate: "2027-03-05T14:30:00"},
		})
	})

	_, err := client.ListTasks(context.Background())
	var ferr *duedate.FormatError
	assert.ErrorAs(t, err, &ferr)
}

func TestClient_ListTasksUnknownStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []TaskItem{
			{ID: 1, Title: "a", Status: "Archived", DueDate: "2027-03-05T14:30:00Z"},
		})
	})

	_, err := client.ListTasks(context.Background())
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestClient_UpdateTaskStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/3", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"Completed"}`, string(body))

		writeJSON(t, w, http.StatusOK, TaskItem{ID: 3, Title: "c", Status: "Completed", DueDate: "2027-03-05T14:30:00Z"})
	})

	got, err := client.UpdateTaskStatus(context.Background(), 3, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestClient_DeleteTask(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteTask(context.Background(), 9))
	assert.True(t, called)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetails{Code: 500, Message: "database is down"}})
	})

	_, err := client.ListTasks(context.Background())
	var terr *models.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, "list tasks", terr.Op)
	assert.EqualError(t, terr.Err, "database is down")
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, WithTimeout(time.Second))
	err := client.DeleteTask(context.Background(), 1)

	var terr *models.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
}
