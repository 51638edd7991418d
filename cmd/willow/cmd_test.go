// ABOUTME: Tests for CLI commands
// ABOUTME: Tests chat, tasks, map, sweep, backup and import commands against a temp data dir

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/willow/internal/config"
	"github.com/harper/willow/internal/storage"
	"github.com/harper/willow/internal/taskmap"
	"github.com/harper/willow/internal/ui"
)

// testApp opens the application state on a temporary data directory.
func testApp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := openApp(&config.Config{DataDir: dir}); err != nil {
		t.Fatalf("failed to open app: %v", err)
	}
	t.Cleanup(func() {
		_ = closeApp()
	})
	return dir
}

// chatLines sends each line through chatCmd and returns the output.
func chatLines(t *testing.T, server string, admin bool, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	chatCmd.SetOut(&out)
	chatCmd.SetIn(strings.NewReader(strings.Join(lines, "\n")))
	_ = chatCmd.Flags().Set("server", server)
	if admin {
		_ = chatCmd.Flags().Set("admin", "true")
	}
	defer func() {
		chatCmd.SetOut(nil)
		chatCmd.SetIn(nil)
		_ = chatCmd.Flags().Set("server", "local")
		_ = chatCmd.Flags().Set("admin", "false")
	}()

	if err := chatCmd.RunE(chatCmd, nil); err != nil {
		t.Fatalf("chatCmd failed: %v", err)
	}
	return out.String()
}

func TestRootCmd_Metadata(t *testing.T) {
	if rootCmd.Use != "willow" {
		t.Errorf("expected Use 'willow', got %q", rootCmd.Use)
	}
	if !strings.Contains(rootCmd.Long, "research task") {
		t.Error("expected description in Long")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"chat", "mcp", "sweep", "tasks", "map", "backup", "import"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("expected subcommand %q", name)
		}
	}
}

func TestOpenApp_UnknownBackend(t *testing.T) {
	err := openApp(&config.Config{DataDir: t.TempDir(), TasklistBackend: "floppy"})
	if err == nil {
		_ = closeApp()
		t.Fatal("expected error for unknown backend")
	}
}

func TestChatCmd_Flags(t *testing.T) {
	for _, name := range []string{"server", "author", "admin"} {
		if chatCmd.Flags().Lookup(name) == nil {
			t.Errorf("%s flag not found", name)
		}
	}
	if chatCmd.Flags().Lookup("server").Shorthand != "s" {
		t.Error("expected server shorthand 's'")
	}
}

func TestChatCmd_Conversation(t *testing.T) {
	testApp(t)

	out := chatLines(t, "home", false,
		"?addstop Clock Tower 42.46 -76.51",
		`?addtask Pikachu "Catch 10 Pokemon"`,
		"Clock Tower",
		"pikachu",
	)
	if !strings.Contains(out, "Creating stop named: Clock Tower") {
		t.Errorf("expected stop creation reply, got %q", out)
	}
	if !strings.Contains(out, "Task Added") {
		t.Errorf("expected task reply, got %q", out)
	}
	if !strings.Contains(out, ui.AckMark+" "+ui.AckMark) {
		t.Errorf("expected double ack, got %q", out)
	}

	err := maps.With("home", func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop("clock tower")
		if err != nil {
			return err
		}
		if !stop.HasTask() || stop.Task.Reward != "Pikachu" {
			t.Errorf("expected Pikachu task, got %+v", stop.Task)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("map lookup failed: %v", err)
	}
}

func TestChatCmd_MessageArgument(t *testing.T) {
	testApp(t)

	var out bytes.Buffer
	chatCmd.SetOut(&out)
	defer chatCmd.SetOut(nil)

	if err := chatCmd.RunE(chatCmd, []string{"?listtasks"}); err != nil {
		t.Fatalf("chatCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "No tasks known") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestChatCmd_AdminOnly(t *testing.T) {
	testApp(t)

	out := chatLines(t, "home", false, "?settimezone America/New_York")
	if !strings.Contains(out, "admins") {
		t.Errorf("expected refusal, got %q", out)
	}

	chatLines(t, "home", true, "?settimezone America/New_York")
	_ = maps.With("home", func(m *taskmap.Taskmap) error {
		if m.TimeZone() != "America/New_York" {
			t.Errorf("expected zone to be set, got %q", m.TimeZone())
		}
		return nil
	})
}

func TestTasksAddCmd(t *testing.T) {
	testApp(t)

	if err := tasksAddCmd.RunE(tasksAddCmd, []string{"Rare Candy", "Win 3 raids", "true"}); err != nil {
		t.Fatalf("tasksAddCmd failed: %v", err)
	}
	task, err := tasks.FindTask("win 3 raids")
	if err != nil {
		t.Fatalf("task not added: %v", err)
	}
	if !task.Shiny {
		t.Error("expected shiny task")
	}
}

func TestTasksAddCmd_BadShiny(t *testing.T) {
	testApp(t)

	if err := tasksAddCmd.RunE(tasksAddCmd, []string{"Pikachu", "Catch 10 Pokemon", "maybe"}); err == nil {
		t.Error("expected error for bad shiny value")
	}
	if tasks.Len() != 0 {
		t.Errorf("expected no tasks, got %d", tasks.Len())
	}
}

func TestTasksAddCmd_Duplicate(t *testing.T) {
	testApp(t)

	_ = tasksAddCmd.RunE(tasksAddCmd, []string{"Pikachu", "Catch 10 Pokemon"})
	if err := tasksAddCmd.RunE(tasksAddCmd, []string{"Raichu", "catch 10 pokemon"}); err == nil {
		t.Error("expected error for duplicate quest")
	}
}

func TestTasksListCmd(t *testing.T) {
	testApp(t)

	var out bytes.Buffer
	tasksListCmd.SetOut(&out)
	defer tasksListCmd.SetOut(nil)

	if err := tasksListCmd.RunE(tasksListCmd, nil); err != nil {
		t.Fatalf("tasksListCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "No tasks known") {
		t.Errorf("unexpected empty output %q", out.String())
	}

	out.Reset()
	_, _ = tasks.AddTask("Pikachu", "Catch 10 Pokemon", false)
	if err := tasksListCmd.RunE(tasksListCmd, nil); err != nil {
		t.Fatalf("tasksListCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "Catch 10 Pokemon") {
		t.Errorf("expected task in output, got %q", out.String())
	}
}

func TestTasksDeleteCmd(t *testing.T) {
	testApp(t)
	_, _ = tasks.AddTask("Pikachu", "Catch 10 Pokemon", false)

	if err := tasksDeleteCmd.RunE(tasksDeleteCmd, []string{"pikachu"}); err != nil {
		t.Fatalf("tasksDeleteCmd failed: %v", err)
	}
	if tasks.Len() != 0 {
		t.Errorf("expected empty tasklist, got %d", tasks.Len())
	}
	if err := tasksDeleteCmd.RunE(tasksDeleteCmd, []string{"pikachu"}); err == nil {
		t.Error("expected error for missing task")
	}
}

func TestTasksNicknameCmd(t *testing.T) {
	testApp(t)
	_, _ = tasks.AddTask("Pikachu", "Catch 10 Pokemon", false)

	if err := tasksNicknameCmd.RunE(tasksNicknameCmd, []string{"pikachu", "pika", "pika"}); err != nil {
		t.Fatalf("tasksNicknameCmd failed: %v", err)
	}
	task, err := tasks.FindTask("pika pika")
	if err != nil {
		t.Fatalf("nickname not added: %v", err)
	}
	if task.Reward != "Pikachu" {
		t.Errorf("expected Pikachu, got %q", task.Reward)
	}
}

func TestTasksResetCmd(t *testing.T) {
	testApp(t)
	_, _ = tasks.AddTask("Pikachu", "Catch 10 Pokemon", false)

	var out bytes.Buffer
	tasksResetCmd.SetOut(&out)
	defer tasksResetCmd.SetOut(nil)

	if err := tasksResetCmd.RunE(tasksResetCmd, nil); err != nil {
		t.Fatalf("tasksResetCmd failed: %v", err)
	}
	if tasks.Len() != 0 {
		t.Errorf("expected empty tasklist, got %d", tasks.Len())
	}

	path := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out.String()), "backup:"))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected backup at %q: %v", path, err)
	}
}

func TestMapShowCmd(t *testing.T) {
	testApp(t)
	chatLines(t, "home", false,
		"?addstop Clock Tower 42.46 -76.51",
		`?addtask Pikachu "Catch 10 Pokemon"`,
		"?settask pikachu Clock Tower",
	)

	var out bytes.Buffer
	mapShowCmd.SetOut(&out)
	defer mapShowCmd.SetOut(nil)

	if err := mapShowCmd.RunE(mapShowCmd, []string{"home"}); err != nil {
		t.Fatalf("mapShowCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "Clock Tower") || !strings.Contains(out.String(), "Catch 10 Pokemon") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestMapListCmd(t *testing.T) {
	testApp(t)
	chatLines(t, "home", false, "?addstop Clock Tower 42.46 -76.51")

	var out bytes.Buffer
	mapListCmd.SetOut(&out)
	defer mapListCmd.SetOut(nil)

	if err := mapListCmd.RunE(mapListCmd, nil); err != nil {
		t.Fatalf("mapListCmd failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "home" {
		t.Errorf("expected home, got %q", out.String())
	}
}

func TestMapExportCmd(t *testing.T) {
	dir := testApp(t)
	chatLines(t, "home", false, "?addstop Clock Tower 42.46 -76.51")

	output := filepath.Join(dir, "export.json")
	_ = mapExportCmd.Flags().Set("output", output)
	defer func() { _ = mapExportCmd.Flags().Set("output", "") }()

	if err := mapExportCmd.RunE(mapExportCmd, []string{"home"}); err != nil {
		t.Fatalf("mapExportCmd failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if doc["type"] != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %v", doc["type"])
	}
}

func TestSweepCmd_Once(t *testing.T) {
	testApp(t)
	chatLines(t, "home", false, "?addstop Clock Tower 42.46 -76.51")

	_ = sweepCmd.Flags().Set("once", "true")
	defer func() { _ = sweepCmd.Flags().Set("once", "false") }()

	var out bytes.Buffer
	sweepCmd.SetOut(&out)
	defer sweepCmd.SetOut(nil)

	if err := sweepCmd.RunE(sweepCmd, nil); err != nil {
		t.Fatalf("sweepCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "0 reset") {
		t.Errorf("expected no resets on a fresh map, got %q", out.String())
	}
}

func TestBackupAndImport(t *testing.T) {
	dir := testApp(t)
	_, _ = tasks.AddTask("Pikachu", "Catch 10 Pokemon", false)
	task, _ := tasks.AddTask("Rare Candy", "Win 3 raids", true)
	_ = tasks.AddNickname(task.ID, "raids")

	output := filepath.Join(dir, "backup.yaml")
	_ = backupCmd.Flags().Set("output", output)
	defer func() { _ = backupCmd.Flags().Set("output", "") }()

	if err := backupCmd.RunE(backupCmd, nil); err != nil {
		t.Fatalf("backupCmd failed: %v", err)
	}

	data, err := storage.ReadFile(output)
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if !strings.Contains(string(data), "Win 3 raids") {
		t.Error("expected task in backup")
	}

	// Restore into a fresh data dir.
	testApp(t)
	if err := importCmd.RunE(importCmd, []string{output}); err != nil {
		t.Fatalf("importCmd failed: %v", err)
	}
	if tasks.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", tasks.Len())
	}
	restored, err := tasks.FindTask("raids")
	if err != nil || restored.Reward != "Rare Candy" {
		t.Errorf("expected nickname to survive import, got %v, %v", restored, err)
	}

	// Importing again skips known quests.
	if err := importCmd.RunE(importCmd, []string{output}); err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if tasks.Len() != 2 {
		t.Errorf("expected 2 tasks after re-import, got %d", tasks.Len())
	}
}

func TestImportCmd_MissingFile(t *testing.T) {
	testApp(t)
	if err := importCmd.RunE(importCmd, []string{filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Error("expected error for missing file")
	}
}
