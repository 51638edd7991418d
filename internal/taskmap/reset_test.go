// ABOUTME: Tests for the daily reset window
// ABOUTME: Verifies midnight detection in the map zone and unconditional resets

package taskmap

import (
	"testing"
	"time"

	"github.com/harper/willow/internal/models"
)

func assignAll(t *testing.T, m *Taskmap) {
	t.Helper()
	task := models.NewTask("Pikachu", "Catch 10 Pokemon", false)
	for _, stop := range m.Stops() {
		stop.Reset()
		if _, err := stop.SetTask(task); err != nil {
			t.Fatalf("SetTask failed: %v", err)
		}
		stop.Icon = "Pikachu"
		stop.SetShadow("Bulbasaur")
	}
}

func assertCleared(t *testing.T, m *Taskmap) {
	t.Helper()
	for _, stop := range m.Stops() {
		if stop.HasTask() || stop.Icon != "" || stop.HasShadow() {
			t.Errorf("stop %q not reset: %+v", stop.Name, stop)
		}
	}
}

func TestResetOld_SameDay(t *testing.T) {
	m, clock := testMap(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	_, _ = m.NewStop(tower, "Clock Tower")

	clock.Advance(24 * time.Hour)
	assignAll(t, m)
	if !m.ResetOld() {
		t.Fatal("expected first call after midnight to reset")
	}
	assertCleared(t, m)

	assignAll(t, m)
	clock.Advance(5 * time.Minute)
	if m.ResetOld() {
		t.Error("expected second call on the same day to do nothing")
	}
	stop, _ := m.FindStop("clock tower")
	if !stop.HasTask() {
		t.Error("second ResetOld mutated the map")
	}
}

func TestResetOld_ThreeDays(t *testing.T) {
	m, clock := testMap(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	_, _ = m.NewStop(tower, "Clock Tower")
	_, _ = m.NewStop(models.NewGeoPoint(42.45, -76.48), "Library")

	for day := 1; day <= 3; day++ {
		clock.Advance(24 * time.Hour)
		assignAll(t, m)
		if !m.ResetOld() {
			t.Fatalf("day %d: expected reset", day)
		}
		assertCleared(t, m)
	}
}

func TestResetOld_BeforeMidnight(t *testing.T) {
	m, clock := testMap(t, time.Date(2024, 5, 1, 0, 5, 0, 0, time.UTC))
	clock.Advance(23*time.Hour + 50*time.Minute)
	if m.ResetOld() {
		t.Error("23:55 on the same day should not reset")
	}
	clock.Advance(10 * time.Minute)
	if !m.ResetOld() {
		t.Error("00:05 the next day should reset")
	}
}

func TestResetOld_UsesMapZone(t *testing.T) {
	// 2024-05-01 20:00 in New York is 2024-05-02 00:00 UTC
	m, clock := testMap(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	if err := m.SetTimeZone("America/New_York"); err != nil {
		t.Fatalf("SetTimeZone failed: %v", err)
	}

	clock.Advance(3 * time.Hour) // 23:00 local
	if m.ResetOld() {
		t.Error("UTC midnight passed but local midnight has not")
	}
	clock.Advance(2 * time.Hour) // 01:00 local next day
	if !m.ResetOld() {
		t.Error("expected reset after local midnight")
	}
}

func TestResetOld_ClockBackwards(t *testing.T) {
	m, clock := testMap(t, time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC))
	clock.Advance(-48 * time.Hour)
	if m.ResetOld() {
		t.Error("an earlier date should not reset")
	}
}

func TestResetAll(t *testing.T) {
	m, clock := testMap(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	_, _ = m.NewStop(tower, "Clock Tower")
	assignAll(t, m)

	clock.Advance(time.Hour)
	m.ResetAll()
	assertCleared(t, m)
	if !m.LastReset().Equal(clock.now) {
		t.Errorf("expected last reset %v, got %v", clock.now, m.LastReset())
	}
	// Same day after an admin reset
	if m.ResetOld() {
		t.Error("ResetOld after ResetAll on the same day should not reset")
	}
}
