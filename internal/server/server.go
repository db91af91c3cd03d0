// Package server is the reference implementation of the remote task store:
// five JSON routes under /tasks backed by a Repository.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/api"
	"github.com/tgienger/ctm/internal/models"
)

// Repository persists tasks. Missing ids are reported as models.ErrNotFound.
type Repository interface {
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	TaskCount(ctx context.Context) (int, error)
}

// NewRouter wires the task routes and the logging middleware
func NewRouter(repo Repository, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), GinZapMiddleware(logger))

	h := NewTaskHandler(repo, logger)
	tasks := r.Group("/tasks")
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}
	return r
}

// WithCORS lets browser clients on the given origins call handler
func WithCORS(handler http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", api.RequestIDHeader},
		ExposedHeaders: []string{api.RequestIDHeader},
	})
	return c.Handler(handler)
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, api.ErrorResponse{
		Error: api.ErrorDetails{Code: code, Message: message},
	})
}
