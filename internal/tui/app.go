package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harshithreddy-dev/rewardo/internal/engine"
	"github.com/harshithreddy-dev/rewardo/internal/export"
	"github.com/harshithreddy-dev/rewardo/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	eng     *engine.Engine
	userKey string
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard    dashboardModel
	focus        focusModel
	tasks        tasksModel
	achievements achievementsModel
	stats        statsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, eng *engine.Engine, userKey string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:        s,
		eng:          eng,
		userKey:      userKey,
		activeView:   viewDashboard,
		dashboard:    newDashboardModel(s, eng, userKey),
		focus:        newFocusModel(s, eng, userKey),
		tasks:        newTasksModel(s, eng, userKey),
		achievements: newAchievementsModel(s, eng, userKey),
		stats:        newStatsModel(s, userKey),
		help:         h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.achievements.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewFocus
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewAchievements
			return a, a.achievements.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The focus view watches the countdown on every tick, whichever
		// view is in front.
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case sessionStartedMsg:
		a.status = "Focus session started"
		return a, nil

	case sessionEndedMsg:
		if msg.result != nil {
			if msg.result.Coins > 0 {
				a.status = fmt.Sprintf("Session done: %d min, +%d coins", msg.result.Minutes, msg.result.Coins)
			} else {
				a.status = fmt.Sprintf("Session done: %d min (daily cap reached)", msg.result.Minutes)
			}
		}
		cmds = append(cmds, a.broadcast(msg)...)
		return a, tea.Batch(cmds...)

	case taskDoneMsg:
		a.status = fmt.Sprintf("Task completed: %s", msg.title)
		cmds = append(cmds, a.broadcast(msg)...)
		return a, tea.Batch(cmds...)

	case rewardClaimedMsg:
		a.status = fmt.Sprintf("Claimed %q: +%d coins", msg.title, msg.coins)
		cmds = append(cmds, a.broadcast(msg)...)
		return a, tea.Batch(cmds...)

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// broadcast routes cross-view events to every model that reacts to them,
// so the dashboard and achievement list stay current no matter which view
// produced the event.
func (a *App) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.achievements, cmd = a.achievements.update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.stats, cmd = a.stats.update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAchievements:
		a.achievements, cmd = a.achievements.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewFocus:
		return a.focus.formActive
	case viewTasks:
		return a.tasks.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewAchievements:
		return a.achievements.refresh()
	case viewStats:
		return a.stats.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewFocus:
		content = a.focus.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAchievements:
		content = a.achievements.view()
	case viewStats:
		content = a.stats.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker(contentHeight)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("rewardo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator in footer while a session runs
	sessionInfo := ""
	if snap := a.eng.Snapshot(a.userKey); snap.Active {
		if snap.State == store.SessionPaused {
			sessionInfo = warningStyle.Render(" ⏸ " + formatCountdown(snap.Remaining))
		} else {
			sessionInfo = successStyle.Render(" ● " + formatCountdown(snap.Remaining))
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker(_ int) string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(a.userKey, 0)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		// Build task lookup
		tasks := make(map[int64]*store.Task)
		tlist, _ := a.store.ListTasks(a.userKey, true)
		for i := range tlist {
			tasks[tlist[i].ID] = &tlist[i]
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("rewardo-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("rewardo-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
