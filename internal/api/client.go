// Package api is the HTTP client for the remote task store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/models"
)

// Client talks to the /tasks collection of a remote store
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every round trip
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the store rooted at baseURL (e.g. http://localhost:8080)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateTask sends a task without id and returns the stored task
func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var out TaskItem
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", newCreateTaskRequest(t), &out); err != nil {
		return models.Task{}, err
	}
	return ToTask(out)
}

// GetTask fetches a single task. A missing task yields models.ErrNotFound.
func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var out TaskItem
	if err := c.do(ctx, "get task", http.MethodGet, taskPath(id), nil, &out); err != nil {
		return models.Task{}, err
	}
	return ToTask(out)
}

// ListTasks fetches every task in the store's order
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []TaskItem
	if err := c.do(ctx, "list tasks", http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(out))
	for _, item := range out {
		t, err := ToTask(item)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// UpdateTaskStatus sends a status-only update and returns the server's view of the task
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	raw := string(status)
	var out TaskItem
	if err := c.do(ctx, "update task", http.MethodPut, taskPath(id), UpdateTaskRequest{Status: &raw}, &out); err != nil {
		return models.Task{}, err
	}
	return ToTask(out)
}

// DeleteTask removes a task; success carries no content
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("remote call failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("remote call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts the server's message, falling back to the raw body
func errorMessage(r io.Reader) error {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(b) == 0 {
		return errors.New("empty error response")
	}
	var er ErrorResponse
	if json.Unmarshal(b, &er) == nil && er.Error.Message != "" {
		return errors.New(er.Error.Message)
	}
	return errors.New(strings.TrimSpace(string(b)))
}
