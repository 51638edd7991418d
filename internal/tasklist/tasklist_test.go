// ABOUTME: Tests for the task catalog
// ABOUTME: Covers uniqueness, lookup order, nicknames, and persistence hooks

package tasklist

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/storage"
)

// memStore is an in-memory storage.TaskStore that records calls.
type memStore struct {
	tasks   []*models.Task
	saved   bool
	saves   int
	backups int
	saveErr error
}

func (m *memStore) Load() ([]*models.Task, error) {
	if !m.saved {
		return nil, storage.ErrNotFound
	}
	return m.tasks, nil
}

func (m *memStore) Save(tasks []*models.Task) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = true
	m.tasks = make([]*models.Task, len(tasks))
	for i, t := range tasks {
		m.tasks[i] = t.Clone()
	}
	return nil
}

func (m *memStore) Backup(at time.Time) (string, error) {
	m.backups++
	return "backup-" + at.Format(storage.BackupStamp), nil
}

func (m *memStore) Close() error { return nil }

func TestAddTask(t *testing.T) {
	store := &memStore{}
	tl := New(store)

	task, err := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if task.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if store.saves != 1 {
		t.Errorf("expected 1 save, got %d", store.saves)
	}
	if tl.Len() != 1 {
		t.Errorf("expected 1 task, got %d", tl.Len())
	}
}

func TestAddTask_DuplicateQuest(t *testing.T) {
	tl := New(&memStore{})
	if _, err := tl.AddTask("Pikachu", "Catch 10 Pokemon", false); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	_, err := tl.AddTask("Dratini", "CATCH 10 POKEMON", false)
	if !errors.Is(err, models.ErrDuplicateTask) {
		t.Errorf("expected ErrDuplicateTask, got %v", err)
	}
	if tl.Len() != 1 {
		t.Errorf("catalog changed after duplicate, len %d", tl.Len())
	}
}

func TestAddTask_RequiresFields(t *testing.T) {
	tl := New(nil)
	if _, err := tl.AddTask("", "Catch 10 Pokemon", false); err == nil {
		t.Error("expected error for empty reward")
	}
}

func TestFindTask_CaseInsensitive(t *testing.T) {
	tl := New(nil)
	added, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)

	for _, text := range []string{"catch 10 pokemon", "Catch 10 Pokemon", "pikachu", "Pikachu"} {
		got, err := tl.FindTask(text)
		if err != nil {
			t.Fatalf("FindTask(%q) failed: %v", text, err)
		}
		if got.ID != added.ID {
			t.Errorf("FindTask(%q) returned wrong task", text)
		}
	}
}

func TestFindTask_QuestBeforeNickname(t *testing.T) {
	tl := New(nil)
	a, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)
	b, _ := tl.AddTask("Dratini", "Spin 5 stops", false)
	if err := tl.AddNickname(a.ID, "spin"); err != nil {
		t.Fatalf("AddNickname failed: %v", err)
	}

	got, err := tl.FindTask("spin 5 stops")
	if err != nil || got.ID != b.ID {
		t.Errorf("expected quest match for Dratini task, got %v, %v", got, err)
	}
	got, err = tl.FindTask("SPIN")
	if err != nil || got.ID != a.ID {
		t.Errorf("expected nickname match for Pikachu task, got %v, %v", got, err)
	}
}

func TestFindTask_RewardCollisionFirstWins(t *testing.T) {
	tl := New(nil)
	first, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)
	_, _ = tl.AddTask("Pikachu", "Make 3 great throws", false)

	got, err := tl.FindTask("pikachu")
	if err != nil {
		t.Fatalf("FindTask failed: %v", err)
	}
	if got.ID != first.ID {
		t.Error("expected first task in catalog order to win")
	}
}

func TestFindTask_NotFound(t *testing.T) {
	tl := New(nil)
	_, err := tl.FindTask("Mewtwo")
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	_, err = tl.FindTask("   ")
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for blank text, got %v", err)
	}
}

func TestFindTask_ReturnsCopy(t *testing.T) {
	tl := New(nil)
	added, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)

	got, _ := tl.FindTask("pikachu")
	got.AddNickname("sneaky")

	stored, _ := tl.Get(added.ID)
	if len(stored.Nicknames) != 0 {
		t.Error("mutating a returned task changed the catalog")
	}
}

func TestAddNickname_Duplicate(t *testing.T) {
	tl := New(&memStore{})
	a, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)
	b, _ := tl.AddTask("Dratini", "Catch a Dragon-type", false)

	if err := tl.AddNickname(a.ID, "pika"); err != nil {
		t.Fatalf("AddNickname failed: %v", err)
	}
	// Same task again is fine
	if err := tl.AddNickname(a.ID, "PIKA"); err != nil {
		t.Errorf("re-adding nickname to same task failed: %v", err)
	}
	if err := tl.AddNickname(b.ID, "pika"); !errors.Is(err, models.ErrDuplicateNickname) {
		t.Errorf("expected ErrDuplicateNickname, got %v", err)
	}
	if err := tl.AddNickname(b.ID, "catch 10 pokemon"); !errors.Is(err, models.ErrDuplicateNickname) {
		t.Errorf("expected ErrDuplicateNickname for another quest, got %v", err)
	}
	if err := tl.AddNickname(uuid.New(), "ghost"); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestRemoveTask(t *testing.T) {
	store := &memStore{}
	tl := New(store)
	a, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)

	if err := tl.RemoveTask(a.ID); err != nil {
		t.Fatalf("RemoveTask failed: %v", err)
	}
	if _, ok := tl.Get(a.ID); ok {
		t.Error("task still present after removal")
	}
	if len(store.tasks) != 0 {
		t.Error("removal was not persisted")
	}
	if err := tl.RemoveTask(a.ID); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestBackupAndClear(t *testing.T) {
	store := &memStore{}
	tl := New(store)
	_, _ = tl.AddTask("Pikachu", "Catch 10 Pokemon", false)

	path, err := tl.BackupAndClear(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BackupAndClear failed: %v", err)
	}
	if path != "backup-2024.05.01.000000" {
		t.Errorf("unexpected backup path %q", path)
	}
	if store.backups != 1 {
		t.Errorf("expected 1 backup, got %d", store.backups)
	}
	if tl.Len() != 0 || len(store.tasks) != 0 {
		t.Error("expected catalog and snapshot to be empty")
	}
}

func TestSaveError_Propagates(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	tl := New(store)

	if _, err := tl.AddTask("Pikachu", "Catch 10 Pokemon", false); err == nil {
		t.Error("expected save error to propagate")
	}
}

func TestSaveError_LeavesCatalogUnchanged(t *testing.T) {
	store := &memStore{}
	tl := New(store)
	task, err := tl.AddTask("Pikachu", "Catch 10 Pokemon", false)
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	store.saveErr = errors.New("disk full")
	if _, err := tl.AddTask("Raichu", "Evolve a Pikachu", false); err == nil {
		t.Error("expected AddTask to fail")
	}
	if err := tl.AddNickname(task.ID, "pika"); err == nil {
		t.Error("expected AddNickname to fail")
	}
	if err := tl.RemoveTask(task.ID); err == nil {
		t.Error("expected RemoveTask to fail")
	}
	if err := tl.Clear(); err == nil {
		t.Error("expected Clear to fail")
	}
	if _, err := tl.BackupAndClear(time.Now()); err == nil {
		t.Error("expected BackupAndClear to fail")
	}

	tasks := tl.Tasks()
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("expected only the original task, got %v", tasks)
	}
	if len(tasks[0].Nicknames) != 0 {
		t.Errorf("expected no nicknames, got %v", tasks[0].Nicknames)
	}
	if _, err := tl.FindTask("pika"); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected failed nickname to be unknown, got %v", err)
	}

	// The next successful save must not carry the failed changes.
	store.saveErr = nil
	if _, err := tl.AddTask("Eevee", "Catch 5 Eevee", false); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if len(store.tasks) != 2 || store.tasks[1].Reward != "Eevee" {
		t.Errorf("expected snapshot of Pikachu and Eevee, got %v", store.tasks)
	}
}

func TestOpen_WithYAMLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasklist.yaml")

	tl, err := Open(storage.NewYAMLTaskStore(path))
	if err != nil {
		t.Fatalf("Open on missing file failed: %v", err)
	}
	if tl.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d", tl.Len())
	}
	a, _ := tl.AddTask("Pikachu", "Catch 10 Pokemon", true)
	_ = tl.AddNickname(a.ID, "pika")

	reopened, err := Open(storage.NewYAMLTaskStore(path))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.FindTask("pika")
	if err != nil {
		t.Fatalf("expected nickname to survive restart: %v", err)
	}
	if got.ID != a.ID || !got.Shiny {
		t.Errorf("unexpected task after reload: %+v", got)
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	tl := New(nil)
	_, _ = tl.AddTask("Pikachu", "Catch 10 Pokemon", false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = tl.FindTask("pikachu")
				_ = tl.Tasks()
			}
			_, _ = tl.AddTask("Reward", uuid.NewString(), false)
		}(i)
	}
	wg.Wait()

	if tl.Len() != 9 {
		t.Errorf("expected 9 tasks, got %d", tl.Len())
	}
}
