// ABOUTME: YAML snapshot format for the tasklist
// ABOUTME: Shared by the YAML store and by backups from every backend

package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harper/willow/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current snapshot format version.
const BackupVersion = "1.0"

// Snapshot represents the YAML tasklist format.
type Snapshot struct {
	Version    string       `yaml:"version"`
	ExportedAt time.Time    `yaml:"exported_at"`
	Tool       string       `yaml:"tool"`
	Tasks      []TaskBackup `yaml:"tasks"`
}

// TaskBackup represents a task in the snapshot format.
type TaskBackup struct {
	ID        string   `yaml:"id"`
	Reward    string   `yaml:"reward"`
	Quest     string   `yaml:"quest"`
	Shiny     bool     `yaml:"shiny,omitempty"`
	Nicknames []string `yaml:"nicknames,omitempty"`
}

// ExportToYAML serializes tasks in catalog order.
func ExportToYAML(tasks []*models.Task) ([]byte, error) {
	snap := Snapshot{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       "willow",
		Tasks:      make([]TaskBackup, len(tasks)),
	}

	for i, task := range tasks {
		snap.Tasks[i] = TaskBackup{
			ID:        task.ID.String(),
			Reward:    task.Reward,
			Quest:     task.Quest,
			Shiny:     task.Shiny,
			Nicknames: task.Nicknames,
		}
	}

	return yaml.Marshal(snap)
}

// ImportFromYAML parses a snapshot written by ExportToYAML.
func ImportFromYAML(data []byte) ([]*models.Task, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if snap.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %s (expected %s)", snap.Version, BackupVersion)
	}

	if snap.Tool != "willow" {
		return nil, fmt.Errorf("%w: %s", ErrWrongTool, snap.Tool)
	}

	tasks := make([]*models.Task, 0, len(snap.Tasks))
	for _, tb := range snap.Tasks {
		id, err := uuid.Parse(tb.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid task ID %s: %w", tb.ID, err)
		}
		tasks = append(tasks, &models.Task{
			ID:        id,
			Reward:    tb.Reward,
			Quest:     tb.Quest,
			Shiny:     tb.Shiny,
			Nicknames: tb.Nicknames,
		})
	}
	return tasks, nil
}

// BackupPath returns the timestamped backup file name for a snapshot in dir.
func BackupPath(dir string, at time.Time, ext string) string {
	return filepath.Join(dir, at.Format(BackupStamp)+"_tasklist_backup"+ext)
}

// writeYAMLBackup writes tasks as a YAML backup next to the live snapshot.
func writeYAMLBackup(dir string, at time.Time, tasks []*models.Task) (string, error) {
	data, err := ExportToYAML(tasks)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	path := BackupPath(dir, at, ".yaml")
	if err := AtomicWrite(path, data); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
