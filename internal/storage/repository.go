// ABOUTME: Repository interface for tasklist snapshots
// ABOUTME: Enables testability and storage backend swapping

package storage

import (
	"time"

	"github.com/harper/willow/internal/models"
)

// TaskStore persists the whole tasklist as one ordered snapshot.
type TaskStore interface {
	// Load returns the saved tasks in catalog order, or ErrNotFound if nothing was saved yet.
	Load() ([]*models.Task, error)
	// Save replaces the snapshot with tasks.
	Save(tasks []*models.Task) error
	// Backup writes a timestamped copy of the current snapshot and returns its path.
	Backup(at time.Time) (string, error)
	Close() error
}

// BackupStamp is the timestamp layout used in backup file names.
const BackupStamp = "2006.01.02.150405"

// Compile-time interface implementation checks.
var (
	_ TaskStore = (*YAMLTaskStore)(nil)
	_ TaskStore = (*SQLiteTaskStore)(nil)
	_ TaskStore = (*BadgerTaskStore)(nil)
)
