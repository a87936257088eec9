package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dexcli/dex/internal/model"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestReadEmptyStore(t *testing.T) {
	t.Parallel()
	s := tempStore(t)
	set, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("Read() on empty store = %v, want empty", set)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()
	s := tempStore(t)
	set := model.TaskSet{
		"abc12345": {ID: "abc12345", Name: "A", Priority: 1, CreatedAt: "2026-01-01T00:00:00.000Z"},
		"def67890": {ID: "def67890", Name: "B", Priority: 2, CreatedAt: "2026-01-02T00:00:00.000Z"},
	}
	if err := s.Write(set); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 2 || got["abc12345"].Name != "A" || got["def67890"].Name != "B" {
		t.Fatalf("Read() = %+v", got)
	}
}

func TestWriteIsAtomic(t *testing.T) {
	t.Parallel()
	s := tempStore(t)
	set := model.TaskSet{"abc12345": {ID: "abc12345", Name: "A", CreatedAt: "x"}}
	if err := s.Write(set); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Fatalf("temp file %q left behind after Write()", e.Name())
		}
	}
}

func TestReadRejectsMalformedLine(t *testing.T) {
	t.Parallel()
	s := tempStore(t)
	path := filepath.Join(s.dir, tasksFile)
	content := `{"id":"abc12345","name":"ok","created_at":"x"}` + "\n" + `not json` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Read()
	if err == nil {
		t.Fatal("Read() with a malformed line should fail")
	}
	me, ok := err.(*model.Error)
	if !ok || me.Kind != model.KindDataCorruption {
		t.Fatalf("Read() error = %v, want DataCorruption", err)
	}
}

func TestLegacyMigration(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	legacy := []map[string]any{
		{"id": "root0001", "name": "root", "created_at": "2026-01-01T00:00:00.000Z"},
		{"id": "child001", "name": "child", "parent_id": "root0001", "created_at": "2026-01-01T00:00:01.000Z"},
	}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(dir, legacyTasksFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	set, err := s.Read()
	if err != nil {
		t.Fatalf("Read() after legacy migration error = %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("migrated set has %d tasks, want 2", len(set))
	}
	if got := set["root0001"].Children; len(got) != 1 || got[0] != "child001" {
		t.Fatalf("migration did not re-derive children: %v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, tasksFile)); err != nil {
		t.Fatalf("tasks.jsonl should exist after migration: %v", err)
	}
}

func TestSyncStateRoundTrip(t *testing.T) {
	t.Parallel()
	s := tempStore(t)
	st, err := s.ReadSyncState()
	if err != nil {
		t.Fatal(err)
	}
	if st.LastSync != nil {
		t.Fatal("initial sync state should have nil LastSync")
	}
	now := "2026-03-05T00:00:00.000Z"
	if err := s.WriteSyncState(&SyncState{LastSync: &now}); err != nil {
		t.Fatal(err)
	}
	st, err = s.ReadSyncState()
	if err != nil {
		t.Fatal(err)
	}
	if st.LastSync == nil || *st.LastSync != now {
		t.Fatalf("ReadSyncState() = %+v, want LastSync=%s", st, now)
	}
}
