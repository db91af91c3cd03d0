// Package store owns the client's in-memory task list and keeps it
// consistent with the remote task store.
//
// Only server-confirmed tasks ever appear in the list, each id at most once.
// Every mutation happens inside a Store method; callers get copies.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/clock"
	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
)

var (
	ErrInvalidID          = errors.New("invalid task id")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	ErrClosed             = errors.New("store is closed")
)

// Remote is the minimal CRUD contract of the remote task store
type Remote interface {
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// State is a snapshot of the store for rendering
type State struct {
	Tasks         []models.Task
	Loading       bool
	Loaded        bool
	ListFailed    bool
	Err           error
	DeleteTarget  int64
	PendingAction map[int64]bool
}

// Store reconciles local task state against a Remote. Create one per
// session and Close it when the session ends.
type Store struct {
	remote   Remote
	clock    clock.Clock
	inputLoc *time.Location
	logger   *zap.Logger

	mu           sync.Mutex
	tasks        []models.Task
	loading      bool
	loaded       bool
	listFailed   bool
	err          error
	deleteTarget int64
	pending      map[int64]bool
	closed       bool
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithInputLocation sets the timezone the form's civil date and time are read in
func WithInputLocation(loc *time.Location) Option {
	return func(s *Store) { s.inputLoc = loc }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote:   remote,
		clock:    clock.Real{},
		inputLoc: time.Local,
		logger:   zap.NewNop(),
		pending:  make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close ends the store's lifecycle. Later operations return ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tasks = nil
	s.pending = make(map[int64]bool)
	s.deleteTarget = 0
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[int64]bool, len(s.pending))
	for id, v := range s.pending {
		pending[id] = v
	}
	return State{
		Tasks:         s.visibleLocked(),
		Loading:       s.loading,
		Loaded:        s.loaded,
		ListFailed:    s.listFailed,
		Err:           s.err,
		DeleteTarget:  s.deleteTarget,
		PendingAction: pending,
	}
}

// Tasks returns the reconciled list. It is empty while the last list
// attempt has failed.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// Err returns the last store-level error, if any
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Filter projects the current list onto f without mutating it
func (s *Store) Filter(f models.Filter) []models.Task {
	return Filter(s.Tasks(), f)
}

// Filter is the pure projection behind Store.Filter. FilterAll is the identity.
func Filter(tasks []models.Task, f models.Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Refresh replaces the whole local list with the remote one. On failure
// the list is considered unusable until a later Refresh succeeds.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.begin(func() { s.loading = true }); err != nil {
		return err
	}

	tasks, err := s.remote.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.listFailed = true
		s.err = fmt.Errorf("list tasks: %w", err)
		s.logger.Error("failed to list tasks", zap.Error(err))
		return s.err
	}

	s.tasks = s.tasks[:0]
	for _, t := range tasks {
		if t.IsDraft() {
			s.logger.Warn("dropping task without id from list", zap.String("title", t.Title))
			continue
		}
		s.upsertLocked(t)
	}
	s.loaded = true
	s.listFailed = false
	s.err = nil
	return nil
}

// Create validates the draft and, only when it is valid, sends it to the
// remote store. The server's task is appended once the call succeeds.
// Validation failures come back as *duedate.ValidationError.
func (s *Store) Create(ctx context.Context, d models.Draft) (models.Task, error) {
	if err := s.begin(nil); err != nil {
		return models.Task{}, err
	}

	task, errs := duedate.ValidateDraft(d, s.clock.Now(), s.inputLoc)
	if err := errs.Err(); err != nil {
		return models.Task{}, err
	}

	created, err := s.remote.CreateTask(ctx, task)
	if err == nil && created.IsDraft() {
		err = &models.TransportError{Op: "create task", Err: errors.New("remote returned a task without id")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = fmt.Errorf("create task: %w", err)
		s.logger.Error("failed to create task", zap.String("title", task.Title), zap.Error(err))
		return models.Task{}, s.err
	}
	s.upsertLocked(created)
	s.clearErrLocked()
	return created, nil
}

// UpdateStatus re-fetches the task, sends a status-only update and then
// adopts the status the server returned.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	if id <= 0 {
		return models.Task{}, ErrInvalidID
	}
	if !status.IsValid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	if err := s.begin(func() { s.pending[id] = true }); err != nil {
		return models.Task{}, err
	}
	defer s.settle(id)

	if _, err := s.remote.GetTask(ctx, id); err != nil {
		return models.Task{}, s.fail("update task", id, err)
	}

	updated, err := s.remote.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return models.Task{}, s.fail("update task", id, err)
	}
	if !updated.Status.IsValid() {
		return models.Task{}, s.fail("update task", id, fmt.Errorf("%w: %q", models.ErrInvalidStatus, updated.Status))
	}
	if updated.ID == 0 {
		updated.ID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearErrLocked()
	for i := range s.tasks {
		if s.tasks[i].ID == updated.ID {
			s.tasks[i].Status = updated.Status
			return s.tasks[i], nil
		}
	}
	return updated, nil
}

// RequestDelete opens the confirmation step for id
func (s *Store) RequestDelete(id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return s.begin(func() { s.deleteTarget = id })
}

// CancelDelete abandons a pending confirmation
func (s *Store) CancelDelete() {
	s.mu.Lock()
	s.deleteTarget = 0
	s.mu.Unlock()
}

// ConfirmDelete deletes id remotely, then drops it from the local list. It
// refuses to call the remote store unless RequestDelete(id) came first.
func (s *Store) ConfirmDelete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if err := s.begin(nil); err != nil {
		return err
	}

	s.mu.Lock()
	if s.deleteTarget != id {
		s.mu.Unlock()
		return fmt.Errorf("%w: task %d", ErrDeleteNotConfirmed, id)
	}
	s.deleteTarget = 0
	s.pending[id] = true
	s.mu.Unlock()
	defer s.settle(id)

	if err := s.remote.DeleteTask(ctx, id); err != nil {
		return s.fail("delete task", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.clearErrLocked()
	return nil
}

// begin checks the lifecycle and applies mark under the lock
func (s *Store) begin(mark func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if mark != nil {
		mark()
	}
	return nil
}

func (s *Store) settle(id int64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// fail records a remote failure as store state without touching the list
func (s *Store) fail(op string, id int64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = fmt.Errorf("%s %d: %w", op, id, err)
	s.logger.Error("remote call failed", zap.String("op", op), zap.Int64("task_id", id), zap.Error(err))
	return s.err
}

// clearErrLocked forgets the last error unless the list itself is unusable
func (s *Store) clearErrLocked() {
	if !s.listFailed {
		s.err = nil
	}
}

// upsertLocked replaces the entry with t's id, or appends t
func (s *Store) upsertLocked(t models.Task) {
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return
		}
	}
	s.tasks = append(s.tasks, t)
}

func (s *Store) visibleLocked() []models.Task {
	if s.listFailed {
		return []models.Task{}
	}
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
