package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

func ToCSV(sessions []store.FocusSession, tasks map[int64]*store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Task", "State", "Start", "End", "Planned (s)", "Elapsed (s)", "Elapsed"}); err != nil {
		return err
	}

	for _, s := range sessions {
		taskName := ""
		if s.TaskID != nil {
			if t, ok := tasks[*s.TaskID]; ok {
				taskName = t.Title
			} else {
				taskName = "Unknown"
			}
		}
		endStr := ""
		if s.EndedAt != nil {
			endStr = s.EndedAt.Local().Format(time.RFC3339)
		}

		row := []string{
			s.ID,
			taskName,
			s.State,
			s.StartedAt.Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", s.PlannedDuration),
			fmt.Sprintf("%d", s.Elapsed),
			formatElapsed(s.Elapsed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatElapsed(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
