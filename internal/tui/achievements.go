package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harshithreddy-dev/rewardo/internal/engine"
	"github.com/harshithreddy-dev/rewardo/internal/store"
)

type achievementsModel struct {
	store   *store.Store
	eng     *engine.Engine
	userKey string
	width   int
	height  int

	achievements []store.Achievement
	cursor       int
}

func newAchievementsModel(s *store.Store, eng *engine.Engine, userKey string) achievementsModel {
	return achievementsModel{
		store:   s,
		eng:     eng,
		userKey: userKey,
	}
}

func (a *achievementsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type achievementsDataMsg struct {
	achievements []store.Achievement
}

func (a achievementsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		achievements, _ := a.store.ListAchievements(a.userKey)
		return achievementsDataMsg{achievements: achievements}
	}
}

func (a achievementsModel) update(msg tea.Msg) (achievementsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case achievementsDataMsg:
		a.achievements = msg.achievements
		if a.cursor >= len(a.achievements) {
			a.cursor = max(0, len(a.achievements)-1)
		}
		return a, nil

	case sessionEndedMsg, taskDoneMsg:
		return a, a.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if a.cursor > 0 {
				a.cursor--
			}
		case key.Matches(msg, keys.Down):
			if a.cursor < len(a.achievements)-1 {
				a.cursor++
			}
		case key.Matches(msg, keys.Enter):
			return a.claimSelected()
		}
	}
	return a, nil
}

func (a achievementsModel) claimSelected() (achievementsModel, tea.Cmd) {
	if len(a.achievements) == 0 {
		return a, nil
	}
	ach := a.achievements[a.cursor]

	claimed, err := a.eng.ClaimAchievementReward(ach.ID)
	switch {
	case errors.Is(err, engine.ErrNotCompleted):
		return a, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("%q is not completed yet", ach.Title), isError: true}
		}
	case errors.Is(err, engine.ErrClaimAlreadyDone):
		return a, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("%q was already claimed", ach.Title), isError: true}
		}
	case err != nil:
		return a, func() tea.Msg { return errStatus(err) }
	}

	return a, tea.Batch(
		a.refresh(),
		func() tea.Msg {
			return rewardClaimedMsg{title: claimed.Title, coins: claimed.Reward}
		},
	)
}

func (a achievementsModel) view() string {
	w := a.width - 4

	unlocked := 0
	for _, ach := range a.achievements {
		if ach.Completed {
			unlocked++
		}
	}
	header := fmt.Sprintf("%s  %s",
		titleStyle.Render("Achievements"),
		mutedStyle.Render(fmt.Sprintf("%d/%d unlocked", unlocked, len(a.achievements))),
	)

	if len(a.achievements) == 0 {
		content := header + "\n\n" + mutedStyle.Render("Nothing here yet.")
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	for i, ach := range a.achievements {
		cursor := "  "
		style := normalItemStyle
		if i == a.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		var badge string
		switch {
		case ach.RewardClaimed:
			badge = mutedStyle.Render("claimed")
		case ach.Completed:
			badge = coinStyle.Render(fmt.Sprintf("claim +%d", ach.Reward))
		default:
			badge = mutedStyle.Render(fmt.Sprintf("+%d", ach.Reward))
		}

		bar := renderBar(ach.CurrentValue, ach.Requirement, 16)
		progress := fmt.Sprintf("%d/%d", ach.CurrentValue, ach.Requirement)
		if ach.Completed {
			progress = successStyle.Render("✓")
		}

		rows = append(rows, style.Render(fmt.Sprintf("%s%-18s", cursor, ach.Title))+
			fmt.Sprintf(" %s %-8s %s", bar, progress, badge))
		rows = append(rows, mutedStyle.Render("    "+ach.Description))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: claim reward"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
