package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harshithreddy-dev/rewardo/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID         string `json:"id"`
	Task       string `json:"task,omitempty"`
	State      string `json:"state"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at,omitempty"`
	PlannedSec int    `json:"planned_seconds"`
	ElapsedSec int    `json:"elapsed_seconds"`
	Elapsed    string `json:"elapsed"`
}

func ToJSON(sessions []store.FocusSession, tasks map[int64]*store.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
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

		export.Sessions = append(export.Sessions, jsonSession{
			ID:         s.ID,
			Task:       taskName,
			State:      s.State,
			StartedAt:  s.StartedAt.Local().Format(time.RFC3339),
			EndedAt:    endStr,
			PlannedSec: s.PlannedDuration,
			ElapsedSec: s.Elapsed,
			Elapsed:    formatElapsed(s.Elapsed),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
