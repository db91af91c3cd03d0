package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/ctm/internal/clock"
	"github.com/tgienger/ctm/internal/db"
	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
	"github.com/tgienger/ctm/internal/store"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText delivers keystrokes to a focused text input. The returned
// commands only drive cursor blinking, so they are dropped.
func typeText(app *App, s string) {
	app.Update(runes(s))
}

// send delivers msg and keeps feeding the returned commands' messages back
// into the app until none are left. Batches are not expanded.
func send(t *testing.T, app *App, msg tea.Msg) {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := app.Update(next)
		if cmd == nil {
			continue
		}
		switch out := cmd().(type) {
		case nil, tea.BatchMsg:
		default:
			queue = append(queue, out)
		}
	}
}

func newTestApp(t *testing.T) (*App, *db.MemoryRepo, *store.Store) {
	t.Helper()
	ctx := context.Background()
	repo := db.NewMemoryRepo()
	for _, task := range []models.Task{
		{Title: "Serve notice", Status: models.StatusPending, DueDate: now.Add(-48 * time.Hour)},
		{Title: "File bundle", Status: models.StatusCompleted, DueDate: now.Add(-72 * time.Hour)},
		{Title: "Draft skeleton", Status: models.StatusInProgress, DueDate: now.Add(96 * time.Hour)},
	} {
		_, err := repo.CreateTask(ctx, task)
		require.NoError(t, err)
	}

	fake := clock.NewFake(now)
	s := store.New(repo, store.WithClock(fake), store.WithInputLocation(time.UTC))
	t.Cleanup(s.Close)
	calc, err := duedate.NewCalculator("Europe/London", fake)
	require.NoError(t, err)

	app := NewApp(ctx, s, calc)
	send(t, app, tea.WindowSizeMsg{Width: 100, Height: 60})
	send(t, app, app.Init()())
	return app, repo, s
}

func TestApp_ListAndOverdue(t *testing.T) {
	app, _, _ := newTestApp(t)

	view := app.View()
	assert.Contains(t, view, "3 tasks found")
	assert.Contains(t, view, "Serve notice")
	assert.Contains(t, view, "Overdue")
	assert.Contains(t, view, "Due Wed 21 Oct 2026, 1:00 PM")
}

func TestApp_FilterCycle(t *testing.T) {
	app, _, _ := newTestApp(t)

	send(t, app, runes("f"))
	view := app.View()
	assert.Contains(t, view, "Filter: Pending")
	assert.Contains(t, view, "Serve notice")
	assert.NotContains(t, view, "Draft skeleton")
	// the count covers the whole list, not the projection
	assert.Contains(t, view, "3 tasks found")
}

func TestApp_StatusChange(t *testing.T) {
	app, repo, s := newTestApp(t)

	send(t, app, runes("3"))

	got, err := repo.GetTask(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, models.StatusCompleted, s.Tasks()[0].Status)
	assert.NotContains(t, app.View(), "Overdue •")
}

func TestApp_DeleteNeedsConfirmation(t *testing.T) {
	app, repo, s := newTestApp(t)
	ctx := context.Background()

	send(t, app, runes("d"))
	assert.Equal(t, int64(1), s.State().DeleteTarget)
	assert.Contains(t, app.View(), "Delete Task?")

	send(t, app, runes("n"))
	assert.Zero(t, s.State().DeleteTarget)
	count, _ := repo.TaskCount(ctx)
	assert.Equal(t, 3, count)

	send(t, app, runes("d"))
	send(t, app, runes("y"))
	count, _ = repo.TaskCount(ctx)
	assert.Equal(t, 2, count)
	assert.Contains(t, app.View(), "2 tasks found")
}

func TestApp_CreateFromForm(t *testing.T) {
	app, repo, s := newTestApp(t)

	send(t, app, runes("n"))
	require.Equal(t, ViewForm, app.CurrentView())

	// submitting an empty form keeps it open with field errors
	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, ViewForm, app.CurrentView())
	assert.Contains(t, app.View(), duedate.MsgTitleRequired)
	assert.Contains(t, app.View(), duedate.MsgEnterDueDate)

	for _, field := range []string{"Brief counsel", "", "5", "11", "2026", "09:00"} {
		if field != "" {
			typeText(app, field)
		}
		send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, ViewTasks, app.CurrentView())
	count, _ := repo.TaskCount(context.Background())
	assert.Equal(t, 4, count)
	tasks := s.Tasks()
	require.Len(t, tasks, 4)
	assert.Equal(t, "Brief counsel", tasks[3].Title)
	assert.Equal(t, time.Date(2026, 11, 5, 9, 0, 0, 0, time.UTC), tasks[3].DueDate)
	assert.Contains(t, app.View(), "4 tasks found")
}

func TestApp_FormCancel(t *testing.T) {
	app, repo, _ := newTestApp(t)

	send(t, app, runes("n"))
	typeText(app, "Abandoned")
	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ViewTasks, app.CurrentView())
	count, _ := repo.TaskCount(context.Background())
	assert.Equal(t, 3, count)
}

type failingRemote struct {
	*db.MemoryRepo
	fail bool
}

func (r *failingRemote) ListTasks(ctx context.Context) ([]models.Task, error) {
	if r.fail {
		return nil, &models.TransportError{Op: "list tasks", Err: context.DeadlineExceeded}
	}
	return r.MemoryRepo.ListTasks(ctx)
}

func TestApp_ListFailureAndRetry(t *testing.T) {
	ctx := context.Background()
	remote := &failingRemote{MemoryRepo: db.NewMemoryRepo(), fail: true}
	_, err := remote.CreateTask(ctx, models.Task{Title: "Only", Status: models.StatusPending, DueDate: now.Add(time.Hour)})
	require.NoError(t, err)

	fake := clock.NewFake(now)
	s := store.New(remote, store.WithClock(fake))
	defer s.Close()
	calc, err := duedate.NewCalculator("Europe/London", fake)
	require.NoError(t, err)

	app := NewApp(ctx, s, calc)
	send(t, app, app.Init()())
	assert.Contains(t, app.View(), "Could not load tasks")
	assert.NotContains(t, app.View(), "Only")

	remote.fail = false
	send(t, app, runes("r"))
	assert.Contains(t, app.View(), "1 task found")
	assert.Contains(t, app.View(), "Only")
}
