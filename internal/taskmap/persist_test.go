// ABOUTME: Tests for taskmap persistence
// ABOUTME: Round trips documents and checks missing-file and legacy handling

package taskmap

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/storage"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	m, clock := testMap(t, start)
	if err := m.SetTimeZone("America/New_York"); err != nil {
		t.Fatalf("SetTimeZone failed: %v", err)
	}
	if err := m.SetBounds(models.NewGeoPoint(42.4, -76.6), models.NewGeoPoint(42.5, -76.4)); err != nil {
		t.Fatalf("SetBounds failed: %v", err)
	}
	if err := m.SetLocation(42.44, -76.48); err != nil {
		t.Fatalf("SetLocation failed: %v", err)
	}
	stop, _ := m.NewStop(tower, "Clock Tower")
	stop.AddNickname("tower")
	task := models.NewTask("Pikachu", "Catch 10 Pokemon", false)
	_, _ = stop.SetTask(task)
	stop.Icon = "Pikachu"
	lib, _ := m.NewStop(models.NewGeoPoint(42.45, -76.48), "Library")
	lib.SetShadow("")

	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(m.Path(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Path() != m.Path() {
		t.Errorf("path mismatch: %s vs %s", got.Path(), m.Path())
	}
	if got.TimeZone() != "America/New_York" {
		t.Errorf("timezone lost: %q", got.TimeZone())
	}
	if !got.LastReset().Equal(m.LastReset()) {
		t.Errorf("last reset %v, want %v", got.LastReset(), m.LastReset())
	}
	b, ok := got.Bounds()
	want, _ := m.Bounds()
	if !ok || b != want {
		t.Errorf("bounds %v, want %v", b, want)
	}
	if loc, ok := got.Location(); !ok || loc.Latitude != 42.44 {
		t.Errorf("location lost: %v", loc)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 stops, got %d", got.Len())
	}

	tower2, err := got.FindStop("tower")
	if err != nil {
		t.Fatalf("nickname lookup after load failed: %v", err)
	}
	if math.Abs(tower2.Location.Latitude-42.46) > 1e-9 || math.Abs(tower2.Location.Longitude+76.51) > 1e-9 {
		t.Errorf("location drifted: %v", tower2.Location)
	}
	if tower2.Task == nil || tower2.Task.ID != task.ID || tower2.Icon != "Pikachu" {
		t.Errorf("task lost: %+v", tower2)
	}
	lib2, _ := got.FindStop("library")
	if lib2.Shadow != models.ShadowUnspecified {
		t.Errorf("shadow lost: %q", lib2.Shadow)
	}
	// Map order is preserved
	if got.Stops()[0].Name != "Clock Tower" {
		t.Errorf("unexpected order: %s first", got.Stops()[0].Name)
	}
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := Load(path)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	m, created, err := LoadOrNew(path)
	if err != nil {
		t.Fatalf("LoadOrNew failed: %v", err)
	}
	if !created {
		t.Error("expected a fresh map")
	}
	if m.Path() != path || m.Len() != 0 {
		t.Errorf("unexpected fresh map %+v", m)
	}
}

func TestLoadOrNew_Existing(t *testing.T) {
	m, _ := testMap(t, time.Now())
	_, _ = m.NewStop(tower, "Clock Tower")
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, created, err := LoadOrNew(m.Path())
	if err != nil || created {
		t.Fatalf("expected existing map, created=%v err=%v", created, err)
	}
	if got.Len() != 1 {
		t.Errorf("expected 1 stop, got %d", got.Len())
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"type": "FeatureCollection", "features": [`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadOrNew(path); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected a parse error, got %v", err)
	}
}

func TestDecode_LegacyDocument(t *testing.T) {
	doc := `{
		"type": "FeatureCollection",
		"properties": {"timezone": "America/New_York", "last_reset": "2019-05-01T00:02:00.123456"},
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-76.51, 42.46]},
			 "properties": {"Name": "Clock Tower", "Nickname": ["tower"], "Reward": "Pikachu", "Quest": "Catch 10 Pokemon", "Icon": "Pikachu"}}
		]
	}`
	m, err := Decode([]byte(doc), "legacy.json")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := time.Date(2019, 5, 1, 0, 2, 0, 123456000, m.LastReset().Location())
	if !m.LastReset().Equal(want) {
		t.Errorf("naive timestamp should be read in map zone: got %v, want %v", m.LastReset(), want)
	}
	stop, err := m.FindStop("tower")
	if err != nil || stop.Task == nil || stop.Task.Reward != "Pikachu" {
		t.Errorf("legacy task lost: %+v, %v", stop, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	docs := map[string]string{
		"unknown zone":      `{"type": "FeatureCollection", "properties": {"timezone": "Nope/Nope"}, "features": []}`,
		"bad last_reset":    `{"type": "FeatureCollection", "properties": {"last_reset": "yesterday"}, "features": []}`,
		"degenerate bounds": `{"type": "FeatureCollection", "properties": {"bounds": [[1, 1], [1, 2]]}, "features": []}`,
		"duplicate stops":   `{"type": "FeatureCollection", "properties": {}, "features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"Name": "A"}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 1]}, "properties": {"Name": "a"}}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode([]byte(doc), "x.json"); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSave_NoPath(t *testing.T) {
	m := New("")
	if err := m.Save(); err == nil {
		t.Error("expected error saving a map without a path")
	}
}
