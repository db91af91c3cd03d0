package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/store"
	"github.com/tgienger/ctm/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewForm
)

type App struct {
	ctx         context.Context
	store       *store.Store
	currentView View
	taskList    *views.TaskListView
	taskForm    *views.TaskFormView
	width       int
	height      int
}

// Creates a new application around a session's store
func NewApp(ctx context.Context, s *store.Store, calc *duedate.Calculator) *App {
	return &App{
		ctx:         ctx,
		store:       s,
		currentView: ViewTasks,
		taskList:    views.NewTaskListView(ctx, s, calc),
	}
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

// CurrentView reports which view has focus
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The list persists behind the form, keep its size current
		a.taskList.Update(msg)

	case views.NewTaskRequested:
		a.currentView = ViewForm
		a.taskForm = views.NewTaskFormView(a.ctx, a.store)
		return a, tea.Batch(a.taskForm.Init(), a.resize())

	case views.TaskCreated, views.FormCancelled:
		a.currentView = ViewTasks
		a.taskForm = nil
		return a, a.resize()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewForm:
		_, cmd = a.taskForm.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewForm:
		if a.taskForm != nil {
			return a.taskForm.View()
		}
	}
	return a.taskList.View()
}
