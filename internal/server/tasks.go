package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/api"
	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 1000
)

const (
	MsgInvalidTaskID      = "invalid task id"
	MsgInvalidTaskPayload = "invalid task payload"
	MsgTaskNotFound       = "task not found"
	MsgTitleRequired      = "title is required"
	MsgTitleTooLong       = "title must be at most 255 characters"
	MsgDescriptionTooLong = "description must be at most 1000 characters"
	MsgStatusRequired     = "status is required"
	MsgInvalidStatus      = "status must be one of Pending, InProgress, Completed"
	MsgDueDateRequired    = "dueDate is required"
	MsgInvalidDueDate     = "dueDate must be an RFC 3339 instant"
)

type TaskHandler struct {
	repo   Repository
	logger *zap.Logger
}

func NewTaskHandler(repo Repository, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{repo: repo, logger: logger}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req api.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, MsgInvalidTaskPayload)
		return
	}

	task, msg := validateCreate(req)
	if msg != "" {
		abortWithError(c, http.StatusBadRequest, msg)
		return
	}

	created, err := h.repo.CreateTask(c.Request.Context(), task)
	if err != nil {
		h.internalError(c, "failed to create task", 0, err)
		return
	}

	c.JSON(http.StatusCreated, api.ToTaskItem(created))
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.repo.ListTasks(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to list tasks", 0, err)
		return
	}

	c.JSON(http.StatusOK, api.ToTaskItems(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.repo.GetTask(c.Request.Context(), id)
	if err != nil {
		h.repoError(c, "failed to get task", id, err)
		return
	}

	c.JSON(http.StatusOK, api.ToTaskItem(task))
}

// UpdateTask changes the status of a task. Other fields in the body are ignored.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, MsgInvalidTaskPayload)
		return
	}
	if req.Status == nil {
		abortWithError(c, http.StatusBadRequest, MsgStatusRequired)
		return
	}
	status, err := models.ParseStatus(*req.Status)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, MsgInvalidStatus)
		return
	}

	task, err := h.repo.UpdateTaskStatus(c.Request.Context(), id, status)
	if err != nil {
		h.repoError(c, "failed to update task", id, err)
		return
	}

	c.JSON(http.StatusOK, api.ToTaskItem(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteTask(c.Request.Context(), id); err != nil {
		h.repoError(c, "failed to delete task", id, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) repoError(c *gin.Context, msg string, id int64, err error) {
	if errors.Is(err, models.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, MsgTaskNotFound)
		return
	}
	h.internalError(c, msg, id, err)
}

func (h *TaskHandler) internalError(c *gin.Context, msg string, id int64, err error) {
	_ = c.Error(err)
	h.logger.Error(msg,
		zap.Int64("task_id", id),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	)
	abortWithError(c, http.StatusInternalServerError, msg)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, MsgInvalidTaskID)
		return 0, false
	}
	return id, true
}

// validateCreate turns a create request into a task, or returns the first
// rule it breaks
func validateCreate(req api.CreateTaskRequest) (models.Task, string) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Task{}, MsgTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.Task{}, MsgTitleTooLong
	}

	var description string
	if req.Description != nil {
		description = *req.Description
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return models.Task{}, MsgDescriptionTooLong
	}

	status := models.StatusPending
	if req.Status != nil {
		parsed, err := models.ParseStatus(*req.Status)
		if err != nil {
			return models.Task{}, MsgInvalidStatus
		}
		status = parsed
	}

	if req.DueDate == nil || strings.TrimSpace(*req.DueDate) == "" {
		return models.Task{}, MsgDueDateRequired
	}
	due, err := duedate.ParseInstant(*req.DueDate)
	if err != nil {
		return models.Task{}, MsgInvalidDueDate
	}

	return models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     due,
	}, ""
}
