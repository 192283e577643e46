package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/harshithreddy-dev/rewardo/internal/engine"
	"github.com/harshithreddy-dev/rewardo/internal/store"
)

type tasksModel struct {
	store   *store.Store
	eng     *engine.Engine
	userKey string
	width   int
	height  int

	tasks    []store.Task
	cursor   int
	showDone bool

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle *string
	formNotes *string
}

func newTasksModel(s *store.Store, eng *engine.Engine, userKey string) tasksModel {
	title, notes := "", ""
	return tasksModel{
		store:     s,
		eng:       eng,
		userKey:   userKey,
		formTitle: &title,
		formNotes: &notes,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := t.store.ListTasks(t.userKey, t.showDone)
		return tasksDataMsg{tasks: tasks}
	}
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.tasks)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showNewTaskForm()
		case key.Matches(msg, keys.Enter):
			return t.completeSelected()
		case key.Matches(msg, keys.Delete):
			if len(t.tasks) > 0 {
				t.store.DeleteTask(t.tasks[t.cursor].ID)
				return t, t.refresh()
			}
		case key.Matches(msg, keys.Pause):
			t.showDone = !t.showDone
			return t, t.refresh()
		}
	}
	return t, nil
}

func (t tasksModel) completeSelected() (tasksModel, tea.Cmd) {
	if len(t.tasks) == 0 {
		return t, nil
	}
	task := t.tasks[t.cursor]
	if task.Done {
		return t, nil
	}
	if err := t.eng.CompleteTask(t.userKey, task.ID); err != nil {
		return t, func() tea.Msg { return errStatus(err) }
	}
	return t, tea.Batch(
		t.refresh(),
		func() tea.Msg { return taskDoneMsg{title: task.Title} },
	)
}

func (t tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*t.formTitle = ""
	*t.formNotes = ""

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Title").Value(t.formTitle),
			huh.NewInput().Title("Notes (optional)").Value(t.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		if *t.formTitle != "" {
			t.store.CreateTask(t.userKey, *t.formTitle, *t.formNotes)
		}
		return t, t.refresh()
	}
	return t, cmd
}

func (t tasksModel) view() string {
	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View())
		return panelStyle.Width(t.width - 4).Render(content)
	}

	w := t.width - 4
	header := titleStyle.Render("Tasks")
	if t.showDone {
		header += mutedStyle.Render("  (including done)")
	}

	if len(t.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	for i, task := range t.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if task.Done {
			check = successStyle.Render("[✓]")
		}
		row := style.Render(fmt.Sprintf("%s%s %s", cursor, check, task.Title))
		if task.Notes != "" {
			row += mutedStyle.Render("  " + task.Notes)
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: complete  d: delete  space: show done"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
