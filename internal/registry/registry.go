// ABOUTME: Per-server taskmap registry with per-server serialization
// ABOUTME: Loads maps on demand, caches them and runs the periodic reset sweep

package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harper/willow/internal/taskmap"
)

// DefaultCacheSize is the number of maps kept in memory.
const DefaultCacheSize = 128

var (
	// ErrInvalidServerID is returned for a blank server id.
	ErrInvalidServerID = errors.New("server id is required")
	// ErrMapNotFound is returned by WithExisting when a server has no map.
	ErrMapNotFound = errors.New("no map for that server")
)

// Registry owns every server's taskmap. All access to one map goes through
// With, which holds that server's lock for the duration of the call.
type Registry struct {
	dir     string
	cache   *lru.Cache[string, *taskmap.Taskmap]
	locks   sync.Map
	logger  *log.Logger
	mapOpts []taskmap.Option
}

// New creates a registry storing maps as <dir>/<server>.json.
func New(dir string, size int, logger *log.Logger, mapOpts ...taskmap.Option) (*Registry, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *taskmap.Taskmap](size)
	if err != nil {
		return nil, fmt.Errorf("create map cache: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{
		dir:     dir,
		cache:   cache,
		logger:  logger,
		mapOpts: mapOpts,
	}, nil
}

// Dir returns the directory holding map documents.
func (r *Registry) Dir() string {
	return r.dir
}

// Path returns the document path for serverID.
func (r *Registry) Path(serverID string) string {
	return filepath.Join(r.dir, Key(serverID)+".json")
}

// Key is the canonical id for serverID. Ids that share a key share a map;
// the cache, the locks and the document name all use it.
func Key(serverID string) string {
	return sanitize(serverID)
}

func sanitize(serverID string) string {
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		}
		return '_'
	}, strings.TrimSpace(serverID))
}

func (r *Registry) lock(serverID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(serverID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// With runs fn with exclusive access to serverID's map, loading it first if
// needed. Changes fn makes are not saved unless fn calls Save. If that save
// fails the map is dropped from memory, so the next call sees the last saved
// document.
func (r *Registry) With(serverID string, fn func(m *taskmap.Taskmap) error) error {
	return r.with(serverID, true, fn)
}

// WithExisting is With for a map that must already exist in memory or on
// disk. It returns ErrMapNotFound instead of creating one.
func (r *Registry) WithExisting(serverID string, fn func(m *taskmap.Taskmap) error) error {
	return r.with(serverID, false, fn)
}

func (r *Registry) with(serverID string, create bool, fn func(m *taskmap.Taskmap) error) error {
	key := Key(serverID)
	if key == "" {
		return ErrInvalidServerID
	}

	mu := r.lock(key)
	mu.Lock()
	defer mu.Unlock()

	if !create && !r.existsLocked(key) {
		return fmt.Errorf("%s: %w", key, ErrMapNotFound)
	}
	m, err := r.getLocked(key)
	if err != nil {
		return err
	}
	err = fn(m)
	if errors.Is(err, taskmap.ErrSave) {
		// Memory now holds changes the document lacks; reload it next time.
		r.cache.Remove(key)
		r.logger.Error("Map save failed, dropping unsaved changes", "server", key, "err", err)
	}
	return err
}

func (r *Registry) existsLocked(key string) bool {
	if r.cache.Contains(key) {
		return true
	}
	_, err := os.Stat(r.Path(key))
	return err == nil
}

func (r *Registry) getLocked(serverID string) (*taskmap.Taskmap, error) {
	if m, ok := r.cache.Get(serverID); ok {
		return m, nil
	}

	path := r.Path(serverID)
	m, created, err := taskmap.LoadOrNew(path, r.mapOpts...)
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.Info("No map found, creating new map", "server", serverID, "path", path)
	} else {
		if m.ResetOld() {
			if err := m.Save(); err != nil {
				return nil, err
			}
			r.logger.Info("Map reset on load", "server", serverID)
		}
		r.logger.Info("Map loaded", "server", serverID, "stops", m.Len(), "map_time", m.Now().Format("2006.01.02.150405"))
	}
	r.cache.Add(serverID, m)
	return m, nil
}

// Loaded reports whether serverID's map is in memory.
func (r *Registry) Loaded(serverID string) bool {
	return r.cache.Contains(Key(serverID))
}

// Servers lists the key of every map in memory or on disk, sorted.
func (r *Registry) Servers() ([]string, error) {
	seen := make(map[string]bool)
	for _, id := range r.cache.Keys() {
		seen[id] = true
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		seen[strings.TrimSuffix(name, ".json")] = true
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
