package tui

import (
	"fmt"
	"time"

	"github.com/harshithreddy-dev/rewardo/internal/engine"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewFocus
	viewTasks
	viewAchievements
	viewStats
)

var viewNames = []string{"Dashboard", "Focus", "Tasks", "Achievements", "Stats"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type sessionStartedMsg struct{}

type sessionEndedMsg struct {
	result *engine.SessionResult
}

type taskDoneMsg struct {
	title string
}

type rewardClaimedMsg struct {
	title string
	coins int
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatCountdown renders seconds as MM:SS, the way the focus timer shows
// remaining time. Sessions are capped at two hours so minutes can reach 120.
func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(m int64) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}

func errStatus(err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}
