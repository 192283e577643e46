package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harshithreddy-dev/rewardo/internal/store"
)

type statsModel struct {
	store   *store.Store
	userKey string
	width   int
	height  int

	summaries []store.DailyFocus
	offset    int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newStatsModel(s *store.Store, userKey string) statsModel {
	return statsModel{
		store:   s,
		userKey: userKey,
		chart:   barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type statsDataMsg struct {
	summaries []store.DailyFocus
}

func (s statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := s.dateRange()
		summaries, _ := s.store.DailyFocusSummary(s.userKey, from, to)
		return statsDataMsg{summaries: summaries}
	}
}

func (s statsModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*s.offset)
	start := end.AddDate(0, 0, -7)
	return start, end
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.summaries = msg.summaries
		s.buildChart()
		return s, nil

	case sessionEndedMsg:
		return s, s.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			s.offset++
			return s, s.refresh()
		case key.Matches(msg, keys.Right):
			if s.offset > 0 {
				s.offset--
			}
			return s, s.refresh()
		}
	}
	return s, nil
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	from, to := s.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("Mon 02")

		var values []barchart.BarValue
		for _, sum := range s.summaries {
			if sum.Date == dateStr {
				values = append(values, barchart.BarValue{
					Name:  "focus",
					Value: float64(sum.Minutes),
					Style: lipgloss.NewStyle().Foreground(colorPrimary),
				})
			}
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	from, to := s.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Focus Minutes per Day"), "  ", dateLabel,
	)

	chartView := s.chart.View()
	tableView := s.renderSummaryTable(w)
	nav := mutedStyle.Render("  ←/→: navigate weeks")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (s statsModel) renderSummaryTable(w int) string {
	if len(s.summaries) == 0 {
		return mutedStyle.Render("  No completed sessions in this period")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %8s", "Date", "Sessions", "Minutes", "Coins"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))

	for _, sum := range s.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %10d %10d %8s",
			sum.Date, sum.Sessions, sum.Minutes, coinStyle.Render(fmt.Sprintf("%d", sum.CoinsEarned)),
		))
	}

	return strings.Join(rows, "\n")
}
