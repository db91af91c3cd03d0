package views

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/models"
	"github.com/tgienger/ctm/internal/store"
	"github.com/tgienger/ctm/internal/ui/keys"
	"github.com/tgienger/ctm/internal/ui/styles"
)

// form field order, also the tab order
const (
	fieldTitle = iota
	fieldDescription
	fieldDay
	fieldMonth
	fieldYear
	fieldTime
	fieldSave
	fieldCount
)

// TaskFormView collects a new task's raw fields. It is dismissed only once
// the store has confirmed the created task.
type TaskFormView struct {
	store  *store.Store
	ctx    context.Context
	styles *styles.Styles
	keys   keys.KeyMap

	inputs   [fieldSave]textinput.Model
	focusIdx int

	submitting bool
	fieldErrs  duedate.Errors
	err        error

	width  int
	height int
}

// TaskCreated signals that the form's task was confirmed by the remote store
type TaskCreated struct {
	Task models.Task
}

// FormCancelled signals that the user left the form without saving
type FormCancelled struct{}

type createResultMsg struct {
	task models.Task
	err  error
}

func NewTaskFormView(ctx context.Context, s *store.Store) *TaskFormView {
	v := &TaskFormView{
		store:  s,
		ctx:    ctx,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}

	placeholders := [fieldSave]struct {
		text  string
		limit int
	}{
		fieldTitle:       {"Task title", 255},
		fieldDescription: {"Description (optional)", 1000},
		fieldDay:         {"DD", 2},
		fieldMonth:       {"MM", 2},
		fieldYear:        {"YYYY", 4},
		fieldTime:        {"HH:MM", 5},
	}
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p.text
		in.CharLimit = p.limit
		v.inputs[i] = in
	}
	v.updateFocus()
	return v
}

// Draft returns the form's current raw values
func (v *TaskFormView) Draft() models.Draft {
	return models.Draft{
		Title:       v.inputs[fieldTitle].Value(),
		Description: v.inputs[fieldDescription].Value(),
		Day:         v.inputs[fieldDay].Value(),
		Month:       v.inputs[fieldMonth].Value(),
		Year:        v.inputs[fieldYear].Value(),
		Time:        v.inputs[fieldTime].Value(),
	}
}

func (v *TaskFormView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *TaskFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case createResultMsg:
		v.submitting = false
		if msg.err == nil {
			return v, func() tea.Msg { return TaskCreated{Task: msg.task} }
		}
		var verr *duedate.ValidationError
		if errors.As(msg.err, &verr) {
			v.fieldErrs = verr.Fields
			v.err = nil
			return v, nil
		}
		v.fieldErrs = nil
		v.err = msg.err
		return v, nil

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *TaskFormView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return FormCancelled{} }

	case key.Matches(msg, v.keys.Save):
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % fieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.focusIdx = (v.focusIdx + fieldCount - 1) % fieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == fieldSave {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, nil
	}

	if v.focusIdx == fieldSave {
		return v, nil
	}
	var cmd tea.Cmd
	v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
	return v, cmd
}

func (v *TaskFormView) updateFocus() {
	for i := range v.inputs {
		if i == v.focusIdx {
			v.inputs[i].Focus()
		} else {
			v.inputs[i].Blur()
		}
	}
}

// submit hands the draft to the store; one submission at a time
func (v *TaskFormView) submit() tea.Cmd {
	if v.submitting {
		return nil
	}
	v.submitting = true
	draft := v.Draft()
	return func() tea.Msg {
		task, err := v.store.Create(v.ctx, draft)
		return createResultMsg{task: task, err: err}
	}
}

func (v *TaskFormView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	style := func(idx int) lipgloss.Style {
		if v.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	fieldErr := func(name string) string {
		if msg, ok := v.fieldErrs[name]; ok {
			return s.FieldError.Render(msg)
		}
		return ""
	}

	dateRow := lipgloss.JoinHorizontal(lipgloss.Top,
		style(fieldDay).Width(6).Render(v.inputs[fieldDay].View()), " ",
		style(fieldMonth).Width(6).Render(v.inputs[fieldMonth].View()), " ",
		style(fieldYear).Width(8).Render(v.inputs[fieldYear].View()), "   ",
		style(fieldTime).Width(9).Render(v.inputs[fieldTime].View()),
	)

	dateErrs := []string{}
	for _, name := range []string{duedate.FieldDueDate, duedate.FieldDay, duedate.FieldMonth, duedate.FieldYear, duedate.FieldTime} {
		if msg := fieldErr(name); msg != "" {
			dateErrs = append(dateErrs, msg)
		}
	}

	btnStyle := s.Button
	if v.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}
	btnLabel := " Save "
	if v.submitting {
		btnLabel = " Saving… "
	}

	rows := []string{
		s.Title.Render("New Task"),
		"",
		"Title:",
		style(fieldTitle).Width(inputWidth).Render(v.inputs[fieldTitle].View()),
		fieldErr(duedate.FieldTitle),
		"Description:",
		style(fieldDescription).Width(inputWidth).Render(v.inputs[fieldDescription].View()),
		"",
		"Due (day / month / year   time):",
		dateRow,
		lipgloss.JoinVertical(lipgloss.Left, dateErrs...),
		"",
		btnStyle.Render(btnLabel),
	}
	if v.err != nil {
		rows = append(rows, "", s.FieldError.Render("Could not save task: "+v.err.Error()))
	}
	rows = append(rows, "",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
