package db

import (
	"context"
	"sync"

	"github.com/tgienger/ctm/internal/models"
)

// MemoryRepo keeps tasks in process memory. It is the server's repository
// when no database is configured, and a test double elsewhere.
type MemoryRepo struct {
	mu     sync.RWMutex
	tasks  map[int64]models.Task
	order  []int64
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tasks:  make(map[int64]models.Task),
		nextID: 1,
	}
}

func (r *MemoryRepo) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	return t, nil
}

func (r *MemoryRepo) GetTask(ctx context.Context, id int64) (models.Task, error) {
	_ = ctx

	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok {
		return models.Task{}, models.ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListTasks(ctx context.Context) ([]models.Task, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id])
	}
	return out, nil
}

func (r *MemoryRepo) UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return models.Task{}, models.ErrNotFound
	}
	t.Status = status
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) DeleteTask(ctx context.Context, id int64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepo) TaskCount(ctx context.Context) (int, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks), nil
}
