// ABOUTME: Badger key-value storage for the tasklist
// ABOUTME: Embedded LSM store, one JSON value per task keyed by catalog position

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/willow/internal/models"
)

// Key prefixes for type-based organization.
const (
	TaskPrefix   = "task:"
	savedAtKey   = "meta:saved_at"
	taskKeyWidth = 6
)

// BadgerTaskStore implements TaskStore on an embedded Badger database.
type BadgerTaskStore struct {
	db  *badger.DB
	dir string
}

// NewBadgerTaskStore opens (or creates) the Badger directory at dir.
func NewBadgerTaskStore(dir string) (*BadgerTaskStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerTaskStore{db: db, dir: dir}, nil
}

func taskKey(i int) []byte {
	return []byte(fmt.Sprintf("%s%0*d", TaskPrefix, taskKeyWidth, i))
}

// Load returns tasks in catalog order. Keys sort by position.
func (s *BadgerTaskStore) Load() ([]*models.Task, error) {
	var tasks []*models.Task
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(savedAtKey)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}

		prefix := []byte(TaskPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var task models.Task
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &task)
			}); err != nil {
				return fmt.Errorf("unmarshal task: %w", err)
			}
			tasks = append(tasks, &task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save replaces every task key in one transaction.
func (s *BadgerTaskStore) Save(tasks []*models.Task) error {
	return s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(TaskPrefix)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
		}

		for i, task := range tasks {
			data, err := json.Marshal(task)
			if err != nil {
				return fmt.Errorf("marshal task: %w", err)
			}
			if err := txn.Set(taskKey(i), data); err != nil {
				return fmt.Errorf("set task: %w", err)
			}
		}

		stamp, err := time.Now().UTC().MarshalText()
		if err != nil {
			return err
		}
		return txn.Set([]byte(savedAtKey), stamp)
	})
}

// Backup streams a native Badger backup into a timestamped file beside the store.
func (s *BadgerTaskStore) Backup(at time.Time) (string, error) {
	path := BackupPath(filepath.Dir(s.dir), at, ".badger")
	f, err := os.Create(path) //#nosec G304 -- path is derived from the data directory
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := s.db.Backup(f, 0); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	return path, nil
}

// Close closes the database.
func (s *BadgerTaskStore) Close() error {
	return s.db.Close()
}
