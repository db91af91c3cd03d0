package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
	"github.com/tgienger/ctm/internal/store"
	"github.com/tgienger/ctm/internal/ui/keys"
	"github.com/tgienger/ctm/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// TaskListView shows the reconciled task list. Every change goes through
// the store; the view only keeps cursor and filter state.
type TaskListView struct {
	store  *store.Store
	calc   *duedate.Calculator
	ctx    context.Context
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	// UI state
	cursor  int
	scrollY int
	filter  models.Filter

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(ctx context.Context, s *store.Store, calc *duedate.Calculator) *TaskListView {
	return &TaskListView{
		store:  s,
		calc:   calc,
		ctx:    ctx,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		filter: models.FilterAll,
	}
}

// NewTaskRequested signals to open the creation form
type NewTaskRequested struct{}

// storeChangedMsg reports that a store operation finished. The view
// re-reads the store's state; err is already recorded there.
type storeChangedMsg struct {
	op  string
	err error
}

// Init loads the list
func (v *TaskListView) Init() tea.Cmd {
	return v.refresh
}

func (v *TaskListView) refresh() tea.Msg {
	return storeChangedMsg{op: "refresh", err: v.store.Refresh(v.ctx)}
}

func (v *TaskListView) updateStatus(id int64, status models.Status) tea.Cmd {
	return func() tea.Msg {
		_, err := v.store.UpdateStatus(v.ctx, id, status)
		return storeChangedMsg{op: "update", err: err}
	}
}

func (v *TaskListView) confirmDelete(id int64) tea.Cmd {
	return func() tea.Msg {
		return storeChangedMsg{op: "delete", err: v.store.ConfirmDelete(v.ctx, id)}
	}
}

// Filter returns the active filter
func (v *TaskListView) Filter() models.Filter {
	return v.filter
}

// visible is the filtered projection the cursor moves over
func (v *TaskListView) visible() []models.Task {
	return v.store.Filter(v.filter)
}

func (v *TaskListView) selected() (models.Task, bool) {
	tasks := v.visible()
	if v.cursor < 0 || v.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[v.cursor], true
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case storeChangedMsg:
		v.clampCursor()
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		state := v.store.State()
		if state.DeleteTarget != 0 {
			return v.updateConfirmDelete(msg, state.DeleteTarget)
		}
		if state.ListFailed {
			return v.updateError(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible())-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, func() tea.Msg { return NewTaskRequested{} }

	case key.Matches(msg, v.keys.Refresh):
		return v, v.refresh

	case key.Matches(msg, v.keys.Filter):
		v.filter = nextFilter(v.filter)
		v.cursor = 0
		v.scrollY = 0
		return v, nil

	case key.Matches(msg, v.keys.Status):
		if task, ok := v.selected(); ok {
			return v, v.updateStatus(task.ID, nextStatus(task.Status))
		}
		return v, nil

	case msg.String() == "1", msg.String() == "2", msg.String() == "3":
		if task, ok := v.selected(); ok {
			status := models.Statuses[msg.String()[0]-'1']
			return v, v.updateStatus(task.ID, status)
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			_ = v.store.RequestDelete(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg, target int64) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		return v, v.confirmDelete(target)
	case key.Matches(msg, v.keys.Cancel):
		v.store.CancelDelete()
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Refresh), key.Matches(msg, v.keys.Enter):
		return v, v.refresh
	}
	return v, nil
}

func nextFilter(f models.Filter) models.Filter {
	for i, candidate := range models.Filters {
		if candidate == f {
			return models.Filters[(i+1)%len(models.Filters)]
		}
	}
	return models.FilterAll
}

func nextStatus(s models.Status) models.Status {
	for i, candidate := range models.Statuses {
		if candidate == s {
			return models.Statuses[(i+1)%len(models.Statuses)]
		}
	}
	return models.StatusPending
}

func (v *TaskListView) clampCursor() {
	n := len(v.visible())
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines + 1 margin = 3 lines
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	return max(availableHeight/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	state := v.store.State()

	if state.DeleteTarget != 0 {
		return v.renderDeleteConfirm(state)
	}

	if state.ListFailed {
		return v.renderError(state)
	}

	var b strings.Builder

	b.WriteString(v.renderHeader(state))
	b.WriteString("\n\n")

	if !state.Loaded {
		b.WriteString(v.styles.TitleMuted.Render("Loading tasks..."))
	} else {
		b.WriteString(v.renderTaskList(state))
	}

	if state.Err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.ErrorText.Render(state.Err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader(state store.State) string {
	s := v.styles

	title := s.Title.Render("Tasks")
	filterBtn := s.Button.Render("Filter: " + v.filter.Label() + " ▼")

	count := fmt.Sprintf("%d tasks found", len(state.Tasks))
	if len(state.Tasks) == 1 {
		count = "1 task found"
	}
	if state.Loading && state.Loaded {
		count += " • refreshing…"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Center, filterBtn, "  ", s.StatusBar.Render(count)),
	)
}

func (v *TaskListView) renderTaskList(state store.State) string {
	s := v.styles
	tasks := store.Filter(state.Tasks, v.filter)

	if len(tasks) == 0 {
		if v.filter != models.FilterAll {
			return s.TitleMuted.Render("No " + v.filter.Label() + " tasks.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(tasks[i], i == v.cursor, state.PendingAction[tasks[i].ID]))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected, pending bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	titleLine := s.Status(task.Status).Render(task.Status.Label()) + " " + task.Title
	if pending {
		titleLine += s.TitleMuted.Render(" …")
	}

	dueLine := s.DueDate.Render("Due " + v.calc.Display(task.DueDate))
	if v.calc.Overdue(task) {
		dueLine = s.Overdue.Render("Overdue • due " + v.calc.Display(task.DueDate))
	}

	lineStyle := s.ListItem.Width(width)
	if selected {
		lineStyle = s.ListSelected.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lineStyle.Render(titleLine),
		lineStyle.Render(dueLine),
	) + "\n"
}

func (v *TaskListView) renderError(state store.State) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	msg := "unknown error"
	if state.Err != nil {
		msg = state.Err.Error()
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Could not load tasks"),
		"",
		lipgloss.NewStyle().Width(clamp(contentWidth-10, 20, 70)).Render(msg),
		"",
		s.Help.Render(fmt.Sprintf("%s retry • %s quit",
			s.HelpKey.Render("r"),
			s.HelpKey.Render("q"),
		)),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm(state store.State) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	name := fmt.Sprintf("task %d", state.DeleteTarget)
	for _, t := range state.Tasks {
		if t.ID == state.DeleteTarget {
			name = t.Title
			break
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s new • %s status • %s del • %s filter • %s refresh • %s quit",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("s") + "      next status",
		s.HelpKey.Render("1-3") + "    set status",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("f") + "      cycle filter",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
