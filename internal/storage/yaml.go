// ABOUTME: YAML file storage for the tasklist
// ABOUTME: Default backend, one human-editable tasklist.yaml file

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/harper/willow/internal/models"
)

// YAMLTaskStore keeps the tasklist in a single YAML file.
type YAMLTaskStore struct {
	path string
}

// NewYAMLTaskStore creates a store backed by the file at path.
func NewYAMLTaskStore(path string) *YAMLTaskStore {
	return &YAMLTaskStore{path: path}
}

// Path returns the snapshot file path.
func (s *YAMLTaskStore) Path() string {
	return s.path
}

// Load reads the snapshot file.
func (s *YAMLTaskStore) Load() ([]*models.Task, error) {
	data, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	tasks, err := ImportFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return tasks, nil
}

// Save rewrites the snapshot file atomically.
func (s *YAMLTaskStore) Save(tasks []*models.Task) error {
	data, err := ExportToYAML(tasks)
	if err != nil {
		return fmt.Errorf("encode tasklist: %w", err)
	}
	return AtomicWrite(s.path, data)
}

// Backup copies the current snapshot to a timestamped file beside it.
// A missing snapshot is backed up as an empty tasklist.
func (s *YAMLTaskStore) Backup(at time.Time) (string, error) {
	tasks, err := s.Load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return writeYAMLBackup(filepath.Dir(s.path), at, tasks)
}

// Close is a no-op for file storage.
func (s *YAMLTaskStore) Close() error {
	return nil
}
