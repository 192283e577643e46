package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreateTask(userKey, title, notes string) (*Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO tasks (user_key, title, notes, created_at) VALUES (?, ?, ?, ?)`,
		userKey, title, notes, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	t := &Task{}
	var createdAt string
	var completedAt sql.NullString

	err := s.db.QueryRow(
		`SELECT id, user_key, title, notes, done, created_at, completed_at
		 FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.UserKey, &t.Title, &t.Notes, &t.Done, &createdAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if completedAt.Valid {
		at, _ := time.Parse(time.RFC3339, completedAt.String)
		t.CompletedAt = &at
	}
	return t, nil
}

func (s *Store) ListTasks(userKey string, includeDone bool) ([]Task, error) {
	query := `SELECT id, user_key, title, notes, done, created_at, completed_at
		 FROM tasks WHERE user_key = ?`
	if !includeDone {
		query += ` AND done = 0`
	}
	query += ` ORDER BY done, created_at DESC`

	rows, err := s.db.Query(query, userKey)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var createdAt string
		var completedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.UserKey, &t.Title, &t.Notes, &t.Done, &createdAt, &completedAt); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if completedAt.Valid {
			at, _ := time.Parse(time.RFC3339, completedAt.String)
			t.CompletedAt = &at
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkTaskDone completes a task. Reports whether this call flipped it, so a
// repeat completion does not feed achievement progress twice.
func (s *Store) MarkTaskDone(id int64) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET done = 1, completed_at = ? WHERE id = ? AND done = 0`,
		now, id,
	)
	if err != nil {
		return false, fmt.Errorf("mark task done: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) DeleteTask(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}
