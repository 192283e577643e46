package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harshithreddy-dev/rewardo/internal/engine"
	"github.com/harshithreddy-dev/rewardo/internal/store"
)

type dashboardModel struct {
	store   *store.Store
	eng     *engine.Engine
	userKey string
	width   int
	height  int

	coins          int64
	earnedToday    int
	minutesToday   int64
	dailyGoal      int
	streak         *store.Streak
	totalSessions  int
	totalMinutes   int64
	recentSessions []store.FocusSession
	taskTitles     map[int64]string
}

func newDashboardModel(s *store.Store, eng *engine.Engine, userKey string) dashboardModel {
	return dashboardModel{
		store:   s,
		eng:     eng,
		userKey: userKey,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	coins          int64
	earnedToday    int
	minutesToday   int64
	dailyGoal      int
	streak         *store.Streak
	totalSessions  int
	totalMinutes   int64
	recentSessions []store.FocusSession
	taskTitles     map[int64]string
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		coins, _ := d.store.CoinBalance(d.userKey)
		today := time.Now().UTC().Format("2006-01-02")
		earned, _ := d.eng.Ledger().EarnedToday(d.userKey, today)
		streak, _ := d.eng.Achievements().Streak(d.userKey)

		goal := d.store.IntSetting(store.SettingDailyGoal, 120)
		var minutesToday int64
		now := time.Now().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if summary, err := d.store.DailyFocusSummary(d.userKey, dayStart, dayStart.AddDate(0, 0, 1)); err == nil {
			for _, df := range summary {
				minutesToday += df.Minutes
			}
		}
		sessions, minutes, _ := d.store.CompletedTotals(d.userKey)
		recent, _ := d.store.ListSessions(d.userKey, 5)

		titles := make(map[int64]string)
		for _, sess := range recent {
			if sess.TaskID == nil {
				continue
			}
			if task, _ := d.store.GetTask(*sess.TaskID); task != nil {
				titles[task.ID] = task.Title
			}
		}

		return dashboardDataMsg{
			coins:          coins,
			earnedToday:    earned,
			minutesToday:   minutesToday,
			dailyGoal:      goal,
			streak:         streak,
			totalSessions:  sessions,
			totalMinutes:   minutes,
			recentSessions: recent,
			taskTitles:     titles,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.coins = msg.coins
		d.earnedToday = msg.earnedToday
		d.minutesToday = msg.minutesToday
		d.dailyGoal = msg.dailyGoal
		d.streak = msg.streak
		d.totalSessions = msg.totalSessions
		d.totalMinutes = msg.totalMinutes
		d.recentSessions = msg.recentSessions
		d.taskTitles = msg.taskTitles
		return d, nil

	case sessionEndedMsg, taskDoneMsg, rewardClaimedMsg:
		return d, d.loadData()
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	walletPanel := d.renderWalletPanel(contentWidth)
	statsPanel := d.renderStatsPanel(contentWidth)
	recentPanel := d.renderRecentPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, walletPanel, statsPanel, recentPanel)
}

func (d dashboardModel) renderWalletPanel(w int) string {
	balance := coinStyle.Render(fmt.Sprintf("🪙 %d coins", d.coins))

	capLine := fmt.Sprintf("Today: %d / %d", d.earnedToday, engine.DailyCap)
	if d.earnedToday >= engine.DailyCap {
		capLine = warningStyle.Render(capLine + "  (cap reached)")
	} else {
		capLine = mutedStyle.Render(capLine)
	}

	bar := renderBar(d.earnedToday, engine.DailyCap, 30)

	content := lipgloss.JoinVertical(lipgloss.Center,
		balance,
		"",
		bar,
		capLine,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderStatsPanel(w int) string {
	current, longest := 0, 0
	if d.streak != nil {
		current = d.streak.CurrentStreak
		longest = d.streak.LongestStreak
	}

	goal := d.dailyGoal
	if goal <= 0 {
		goal = 120
	}
	goalLine := fmt.Sprintf("Daily goal: %d / %d min  %s",
		d.minutesToday, goal, renderBar(int(d.minutesToday), goal, 16))
	if int(d.minutesToday) >= goal {
		goalLine += successStyle.Render("  ✓")
	}

	streakLine := fmt.Sprintf("🔥 Streak: %s  (best %d)",
		accentStyle.Render(fmt.Sprintf("%d days", current)), longest)
	totalsLine := fmt.Sprintf("Sessions: %d   Focus time: %s",
		d.totalSessions, formatMinutes(d.totalMinutes))

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Progress"),
		goalLine,
		streakLine,
		totalsLine,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.recentSessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet. Press 2 to start focusing."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, sess := range d.recentSessions {
		name := "free focus"
		if sess.TaskID != nil {
			if t, ok := d.taskTitles[*sess.TaskID]; ok {
				name = t
			}
		}
		startStr := sess.StartedAt.Local().Format("Jan 02 15:04")

		var status string
		switch sess.State {
		case store.SessionCompleted:
			status = successStyle.Render("✓")
		case store.SessionAborted:
			status = errorStyle.Render("✗")
		default:
			status = warningStyle.Render("●")
		}

		row := fmt.Sprintf("  %s %s  %-20s %3d min", status, startStr, name, sess.Elapsed/60)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderBar draws a simple progress bar: filled blocks up to value/total.
func renderBar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := value * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := coinStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar
}
