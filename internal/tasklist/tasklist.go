// ABOUTME: Shared catalog of known research tasks
// ABOUTME: Quest/nickname resolution with snapshot-after-every-mutation persistence

package tasklist

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/storage"
)

// Tasklist is the deployment-wide task catalog. It is safe for concurrent use:
// lookups share a read lock and mutations are serialized.
// Returned tasks are copies; change them through Tasklist methods.
type Tasklist struct {
	mu    sync.RWMutex
	tasks []*models.Task
	store storage.TaskStore
}

// New creates an empty tasklist. A nil store keeps the catalog in memory only.
func New(store storage.TaskStore) *Tasklist {
	return &Tasklist{store: store}
}

// Open loads the snapshot from store. A missing snapshot gives an empty catalog.
func Open(store storage.TaskStore) (*Tasklist, error) {
	tl := New(store)
	tasks, err := store.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tl, nil
		}
		return nil, fmt.Errorf("load tasklist: %w", err)
	}
	tl.tasks = tasks
	return tl, nil
}

// AddTask appends a new task. The quest must not already be known.
func (tl *Tasklist) AddTask(reward, quest string, shiny bool) (*models.Task, error) {
	if strings.TrimSpace(reward) == "" || strings.TrimSpace(quest) == "" {
		return nil, fmt.Errorf("reward and quest are required")
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	for _, t := range tl.tasks {
		if t.MatchesQuest(quest) {
			return nil, models.ErrDuplicateTask
		}
	}

	task := models.NewTask(reward, quest, shiny)
	next := append(tl.tasks[:len(tl.tasks):len(tl.tasks)], task)
	if err := tl.commitLocked(next); err != nil {
		return nil, err
	}
	return task.Clone(), nil
}

// RemoveTask deletes the task with id. Stops that still point at it keep
// a dangling reference which displays as a deleted task.
func (tl *Tasklist) RemoveTask(id uuid.UUID) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	i := tl.indexLocked(id)
	if i < 0 {
		return models.ErrTaskNotFound
	}
	next := make([]*models.Task, 0, len(tl.tasks)-1)
	next = append(next, tl.tasks[:i]...)
	next = append(next, tl.tasks[i+1:]...)
	return tl.commitLocked(next)
}

// FindTask resolves text against quests, then nicknames, then rewards.
// Each pass walks the catalog in order and the first match wins.
func (tl *Tasklist) FindTask(text string) (*models.Task, error) {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	t := tl.findLocked(text)
	if t == nil {
		return nil, models.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (tl *Tasklist) findLocked(text string) *models.Task {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, t := range tl.tasks {
		if t.MatchesQuest(text) {
			return t
		}
	}
	for _, t := range tl.tasks {
		if t.HasNickname(text) {
			return t
		}
	}
	for _, t := range tl.tasks {
		if t.MatchesReward(text) {
			return t
		}
	}
	return nil
}

// Get returns the task with id, if it still exists.
func (tl *Tasklist) Get(id uuid.UUID) (*models.Task, bool) {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	i := tl.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return tl.tasks[i].Clone(), true
}

// AddNickname adds an alias to the task with id. The nickname may not already
// resolve to a different task.
func (tl *Tasklist) AddNickname(id uuid.UUID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return fmt.Errorf("nickname is required")
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	i := tl.indexLocked(id)
	if i < 0 {
		return models.ErrTaskNotFound
	}
	task := tl.tasks[i]
	for _, other := range tl.tasks {
		if other.ID == task.ID {
			continue
		}
		if other.MatchesQuest(nickname) || other.HasNickname(nickname) {
			return models.ErrDuplicateNickname
		}
	}
	updated := task.Clone()
	if !updated.AddNickname(nickname) {
		return nil
	}
	next := make([]*models.Task, len(tl.tasks))
	copy(next, tl.tasks)
	next[i] = updated
	return tl.commitLocked(next)
}

// Tasks returns copies of every task in catalog order.
func (tl *Tasklist) Tasks() []*models.Task {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	out := make([]*models.Task, len(tl.tasks))
	for i, t := range tl.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of known tasks.
func (tl *Tasklist) Len() int {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return len(tl.tasks)
}

// Clear empties the catalog. It does not keep history; see BackupAndClear.
func (tl *Tasklist) Clear() error {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	return tl.commitLocked(nil)
}

// Backup writes a timestamped copy of the snapshot and returns its path.
func (tl *Tasklist) Backup(at time.Time) (string, error) {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	if tl.store == nil {
		return "", fmt.Errorf("tasklist has no store to back up")
	}
	return tl.store.Backup(at)
}

// BackupAndClear snapshots the catalog to a timestamped backup, then clears it.
// Nothing is cleared if the backup fails.
func (tl *Tasklist) BackupAndClear(at time.Time) (string, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	var path string
	if tl.store != nil {
		var err error
		path, err = tl.store.Backup(at)
		if err != nil {
			return "", fmt.Errorf("backup tasklist: %w", err)
		}
	}
	return path, tl.commitLocked(nil)
}

func (tl *Tasklist) indexLocked(id uuid.UUID) int {
	for i, t := range tl.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked saves next and only then makes it the catalog, so a failed
// save leaves the catalog as it was.
func (tl *Tasklist) commitLocked(next []*models.Task) error {
	if tl.store != nil {
		if err := tl.store.Save(next); err != nil {
			return fmt.Errorf("save tasklist: %w", err)
		}
	}
	tl.tasks = next
	return nil
}
