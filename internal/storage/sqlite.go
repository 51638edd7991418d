// ABOUTME: SQLite storage implementation for the tasklist
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harper/willow/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteTaskStore implements TaskStore with a local SQLite database.
type SQLiteTaskStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteTaskStore opens the database at path.
// Creates the directory and database file if they don't exist.
func NewSQLiteTaskStore(path string) (*SQLiteTaskStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteTaskStore{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// migrate creates or updates the database schema.
func (s *SQLiteTaskStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			reward TEXT NOT NULL,
			quest TEXT NOT NULL,
			shiny INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS task_nicknames (
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			nickname TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshot_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			saved_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_task_nicknames_task_id ON task_nicknames(task_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns tasks in catalog order.
func (s *SQLiteTaskStore) Load() ([]*models.Task, error) {
	var savedAt time.Time
	err := s.db.QueryRow("SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	rows, err := s.db.Query("SELECT id, reward, quest, shiny FROM tasks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*models.Task
	byID := make(map[string]*models.Task)
	for rows.Next() {
		var idStr string
		var task models.Task
		if err := rows.Scan(&idStr, &task.Reward, &task.Quest, &task.Shiny); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		task.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid task ID %s: %w", idStr, err)
		}
		tasks = append(tasks, &task)
		byID[idStr] = &task
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nickRows, err := s.db.Query("SELECT task_id, nickname FROM task_nicknames ORDER BY task_id, position")
	if err != nil {
		return nil, fmt.Errorf("query nicknames: %w", err)
	}
	defer func() { _ = nickRows.Close() }()

	for nickRows.Next() {
		var taskID, nickname string
		if err := nickRows.Scan(&taskID, &nickname); err != nil {
			return nil, fmt.Errorf("scan nickname: %w", err)
		}
		if task, ok := byID[taskID]; ok {
			task.Nicknames = append(task.Nicknames, nickname)
		}
	}
	return tasks, nickRows.Err()
}

// Save replaces every row in one transaction.
func (s *SQLiteTaskStore) Save(tasks []*models.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM task_nicknames; DELETE FROM tasks;"); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for i, task := range tasks {
		if _, err := tx.Exec(
			"INSERT INTO tasks (id, position, reward, quest, shiny) VALUES (?, ?, ?, ?, ?)",
			task.ID.String(), i, task.Reward, task.Quest, task.Shiny,
		); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		for j, nickname := range task.Nicknames {
			if _, err := tx.Exec(
				"INSERT INTO task_nicknames (task_id, position, nickname) VALUES (?, ?, ?)",
				task.ID.String(), j, nickname,
			); err != nil {
				return fmt.Errorf("insert nickname: %w", err)
			}
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at",
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("update snapshot meta: %w", err)
	}

	return tx.Commit()
}

// Backup exports the current rows as a YAML backup next to the database.
func (s *SQLiteTaskStore) Backup(at time.Time) (string, error) {
	tasks, err := s.Load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return writeYAMLBackup(filepath.Dir(s.path), at, tasks)
}

// Close closes the database connection.
func (s *SQLiteTaskStore) Close() error {
	return s.db.Close()
}
