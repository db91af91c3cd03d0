package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/models"
)

// DemoTasks returns the demo data set, due 1, 5, 8 and 10 days after now
func DemoTasks(now time.Time) []models.Task {
	due := func(days int) time.Time { return now.AddDate(0, 0, days).UTC() }
	return []models.Task{
		{
			Title:       "Review case documents",
			Description: "Review all documents for the Smith vs. Jones case before the hearing.",
			Status:      models.StatusInProgress,
			DueDate:     due(1),
		},
		{
			Title:       "Prepare court filing",
			Description: "Draft and prepare court filing for the Johnson case.",
			Status:      models.StatusPending,
			DueDate:     due(5),
		},
		{
			Title:       "Schedule client meeting",
			Description: "Arrange a meeting with Mrs. Williams to discuss case progress.",
			Status:      models.StatusPending,
			DueDate:     due(8),
		},
		{
			Title:       "Update case management system",
			Description: "Enter recent developments in the Thompson case into the system.",
			Status:      models.StatusPending,
			DueDate:     due(10),
		},
	}
}

// Seed inserts the demo tasks into an empty repository. A repository that
// already holds tasks is left alone.
func Seed(ctx context.Context, repo Repository, now time.Time, logger *zap.Logger) error {
	count, err := repo.TaskCount(ctx)
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	if count > 0 {
		logger.Info("skipping seed, repository not empty", zap.Int("tasks", count))
		return nil
	}

	tasks := DemoTasks(now)
	for _, t := range tasks {
		if _, err := repo.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}
	logger.Info("seeded demo tasks", zap.Int("tasks", len(tasks)))
	return nil
}
