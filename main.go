package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harshithreddy-dev/rewardo/internal/engine"
	"github.com/harshithreddy-dev/rewardo/internal/store"
	"github.com/harshithreddy-dev/rewardo/internal/tui"
)

const userKey = "main_user"

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if _, err := s.GetOrCreateUser(userKey); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := s.SeedAchievements(userKey, engine.DefaultCatalog); err != nil {
		fmt.Fprintf(os.Stderr, "error seeding achievements: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(s)
	if err := eng.Recover(userKey); err != nil {
		fmt.Fprintf(os.Stderr, "error recovering sessions: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(s, eng, userKey)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
