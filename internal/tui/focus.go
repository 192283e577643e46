package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/harshithreddy-dev/rewardo/internal/engine"
	"github.com/harshithreddy-dev/rewardo/internal/store"
)

type focusModel struct {
	store   *store.Store
	eng     *engine.Engine
	userKey string
	width   int
	height  int

	snap  engine.SessionSnapshot
	tasks []store.Task

	// Break countdown shown after a finished session. Purely cosmetic: no
	// coins are involved and aborting it costs nothing.
	onBreak  bool
	breakEnd time.Time

	lastResult    *engine.SessionResult
	lastSessionID string

	formActive  bool
	form        *huh.Form
	formTask    *string // task ID as decimal string, "" = none
	formMinutes *string
}

func newFocusModel(s *store.Store, eng *engine.Engine, userKey string) focusModel {
	task, minutes := "", ""
	return focusModel{
		store:       s,
		eng:         eng,
		userKey:     userKey,
		formTask:    &task,
		formMinutes: &minutes,
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		return f.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if !f.snap.Active && !f.onBreak {
				return f.showStartForm()
			}
		case key.Matches(msg, keys.Pause):
			if f.onBreak {
				f.onBreak = false
				return f, nil
			}
			return f.togglePause()
		case key.Matches(msg, keys.Collect):
			if f.snap.Active {
				return f.collect()
			}
		case key.Matches(msg, keys.Delete):
			if f.snap.Active {
				return f.abort()
			}
		}
	}
	return f, nil
}

// tick polls the engine. The countdown itself runs inside the engine; the
// view only has to notice when the session it was watching is gone, which
// means it expired on its own since the last poll.
func (f focusModel) tick() (focusModel, tea.Cmd) {
	f.snap = f.eng.Snapshot(f.userKey)

	if f.snap.Active {
		f.lastSessionID = f.snap.SessionID
		return f, nil
	}

	if f.lastSessionID != "" && f.snap.LastResult != nil && f.snap.LastResult.SessionID == f.lastSessionID {
		result := f.snap.LastResult
		f.lastSessionID = ""
		f.lastResult = result
		if result.Natural {
			f.startBreak()
			return f, func() tea.Msg { return sessionEndedMsg{result: result} }
		}
	}

	if f.onBreak && time.Until(f.breakEnd) <= 0 {
		f.onBreak = false
		return f, func() tea.Msg {
			return statusMsg{text: "Break over — ready for another round"}
		}
	}
	return f, nil
}

func (f *focusModel) startBreak() {
	secs := f.store.IntSetting(store.SettingBreakDuration, 30)
	if secs <= 0 {
		secs = 30
	}
	f.onBreak = true
	f.breakEnd = time.Now().Add(time.Duration(secs) * time.Second)
}

func (f focusModel) showStartForm() (focusModel, tea.Cmd) {
	*f.formTask = ""
	*f.formMinutes = f.defaultMinutes()
	f.tasks, _ = f.store.ListTasks(f.userKey, false)

	taskOptions := []huh.Option[string]{huh.NewOption("(no task)", "")}
	for _, t := range f.tasks {
		taskOptions = append(taskOptions, huh.NewOption(t.Title, strconv.FormatInt(t.ID, 10)))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Task").Options(taskOptions...).Value(f.formTask),
			huh.NewInput().
				Title(fmt.Sprintf("Duration (minutes, %d-%d)", engine.MinSessionMinutes, engine.MaxSessionMinutes)).
				Value(f.formMinutes).
				Validate(validateMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	f.formActive = true
	return f, f.form.Init()
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if n < engine.MinSessionMinutes || n > engine.MaxSessionMinutes {
		return fmt.Errorf("must be %d-%d", engine.MinSessionMinutes, engine.MaxSessionMinutes)
	}
	return nil
}

func (f focusModel) defaultMinutes() string {
	secs := f.store.IntSetting(store.SettingDefaultDuration, 1500)
	if secs < 60 {
		return "25"
	}
	return strconv.Itoa(secs / 60)
}

func (f focusModel) updateForm(msg tea.Msg) (focusModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if fm, ok := form.(*huh.Form); ok {
		f.form = fm
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		return f.startSession()
	}
	return f, cmd
}

func (f focusModel) startSession() (focusModel, tea.Cmd) {
	minutes, err := strconv.Atoi(*f.formMinutes)
	if err != nil {
		return f, func() tea.Msg { return errStatus(err) }
	}

	var taskID *int64
	if *f.formTask != "" {
		id, err := strconv.ParseInt(*f.formTask, 10, 64)
		if err == nil {
			taskID = &id
		}
	}

	snap, err := f.eng.StartSession(f.userKey, taskID, minutes)
	if err != nil {
		return f, func() tea.Msg { return errStatus(err) }
	}
	// The chosen duration becomes the new default.
	f.store.SetIntSetting(store.SettingDefaultDuration, minutes*60)
	f.snap = *snap
	f.lastSessionID = snap.SessionID
	f.onBreak = false
	return f, func() tea.Msg { return sessionStartedMsg{} }
}

func (f focusModel) togglePause() (focusModel, tea.Cmd) {
	switch f.snap.State {
	case store.SessionRunning:
		if err := f.eng.Pause(f.userKey); err != nil {
			return f, func() tea.Msg { return errStatus(err) }
		}
	case store.SessionPaused:
		if err := f.eng.Resume(f.userKey); err != nil {
			return f, func() tea.Msg { return errStatus(err) }
		}
	default:
		return f, nil
	}
	f.snap = f.eng.Snapshot(f.userKey)
	return f, nil
}

func (f focusModel) collect() (focusModel, tea.Cmd) {
	result, err := f.eng.Collect(f.userKey)
	if err != nil {
		return f, func() tea.Msg { return errStatus(err) }
	}
	f.snap = f.eng.Snapshot(f.userKey)
	f.lastSessionID = ""
	f.lastResult = result
	f.startBreak()
	return f, func() tea.Msg { return sessionEndedMsg{result: result} }
}

func (f focusModel) abort() (focusModel, tea.Cmd) {
	if err := f.eng.Abort(f.userKey); err != nil {
		return f, func() tea.Msg { return errStatus(err) }
	}
	f.snap = f.eng.Snapshot(f.userKey)
	f.lastSessionID = ""
	return f, func() tea.Msg {
		return statusMsg{text: "Session aborted — no coins earned"}
	}
}

func (f focusModel) view() string {
	if f.formActive && f.form != nil {
		title := titleStyle.Render("New Focus Session")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View())
		return panelStyle.Width(f.width - 4).Render(content)
	}

	w := f.width - 4
	title := titleStyle.Render("Focus")

	var timeDisplay, indicator, detail, controls string

	switch {
	case f.snap.Active && f.snap.State == store.SessionFinalizing && f.snap.LastError != nil:
		timeDisplay = timerStyle.Width(w - 6).Render("00:00")
		indicator = errorStyle.Render("!  SAVING FAILED")
		detail = errorStyle.Render(f.snap.LastError.Error())
		controls = mutedStyle.Render("x: retry collecting the reward")

	case f.snap.Active && f.snap.State == store.SessionPaused:
		timeDisplay = timerPausedStyle.Width(w - 6).Render(formatCountdown(f.snap.Remaining))
		indicator = warningStyle.Render("⏸  PAUSED")
		detail = f.taskLine()
		controls = mutedStyle.Render("space: resume  x: collect  d: abort")

	case f.snap.Active:
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatCountdown(f.snap.Remaining))
		indicator = successStyle.Render("●  FOCUSING")
		detail = f.taskLine()
		controls = mutedStyle.Render("space: pause  x: collect early  d: abort")

	case f.onBreak:
		remaining := int(time.Until(f.breakEnd).Seconds())
		timeDisplay = highlightStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(remaining))
		indicator = highlightStyle.Bold(true).Render("BREAK")
		detail = f.resultLine()
		controls = mutedStyle.Render("space: skip break")

	default:
		timeDisplay = timerStyle.Width(w - 6).Render("00:00")
		indicator = mutedStyle.Render("■  IDLE")
		detail = f.resultLine()
		controls = mutedStyle.Render("s: start a session")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		indicator,
		detail,
		"",
		controls,
	)

	if f.snap.Active {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (f focusModel) taskLine() string {
	if f.snap.TaskID == nil {
		return mutedStyle.Render("free focus")
	}
	task, _ := f.store.GetTask(*f.snap.TaskID)
	if task == nil {
		return mutedStyle.Render("free focus")
	}
	return highlightStyle.Render(task.Title)
}

func (f focusModel) resultLine() string {
	if f.lastResult == nil {
		return mutedStyle.Render("1 coin per focused minute, up to the daily cap")
	}
	if f.lastResult.Coins == 0 {
		return mutedStyle.Render(fmt.Sprintf("Last session: %d min — daily cap reached", f.lastResult.Minutes))
	}
	return coinStyle.Render(fmt.Sprintf("Last session: %d min  +%d coins", f.lastResult.Minutes, f.lastResult.Coins))
}
